// Package signature provides the cryptographic primitives shared by the
// rest of the blockchain foundation: SHA-256 hashing, Ed25519 keypair
// generation/signing/verification, and the hex codec used to move keys and
// hashes onto the wire.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ZeroHash is the previous-hash value used by the genesis block: 64 hex
// zeros, the textual form of a 32-byte all-zero SHA-256 digest.
var ZeroHash = strings.Repeat("0", 64)

// ErrInvalidKey is returned when a public or private key does not decode to
// the length Ed25519 requires.
var ErrInvalidKey = errors.New("signature: invalid key length")

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashBytes returns the raw SHA-256 digest of data.
func HashBytes(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ToHex hex-encodes b. A nil slice encodes to the empty string so optional
// signature/public-key fields round-trip through JSON cleanly.
func ToHex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return hex.EncodeToString(b)
}

// FromHex decodes a hex string produced by ToHex.
func FromHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

// GenerateKey produces a fresh Ed25519 keypair using crypto/rand.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign signs digest with priv, returning the raw 64-byte signature.
func Sign(priv ed25519.PrivateKey, digest []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return ed25519.Sign(priv, digest), nil
}

// Verify reports whether sig is a valid Ed25519 signature over digest under
// pub. Malformed key/signature lengths are treated as verification failure
// rather than an error, matching ed25519.Verify's own contract.
func Verify(pub ed25519.PublicKey, digest, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, digest, sig)
}
