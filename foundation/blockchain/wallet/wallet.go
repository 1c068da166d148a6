// Package wallet holds an Ed25519 keypair on behalf of a participant and
// derives the textual address other components use to refer to it.
package wallet

import (
	"crypto/ed25519"

	"github.com/jrmckee/powchain/foundation/blockchain/signature"
)

// SystemAddress is the reserved sender denoting coinbase/reward issuance.
// It bypasses signature and balance checks.
const SystemAddress = "system"

// Wallet is an ephemeral keypair holder. It is never persisted; callers that
// need to sign hold on to the Wallet value itself.
type Wallet struct {
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
	address    string
}

// New generates a fresh Ed25519 keypair and derives its address.
func New() (*Wallet, error) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		return nil, err
	}

	return &Wallet{
		publicKey:  pub,
		privateKey: priv,
		address:    DeriveAddress(pub),
	}, nil
}

// DeriveAddress hex-encodes SHA-256(publicKey), prefixes it with "0x" and
// truncates to 42 characters total.
func DeriveAddress(pub ed25519.PublicKey) string {
	sum := signature.HashBytes(pub)
	addr := "0x" + signature.ToHex(sum[:])
	return addr[:42]
}

// Address returns the wallet's derived address.
func (w *Wallet) Address() string {
	return w.address
}

// PublicKey returns the wallet's public key. The private key is never
// exposed except through Sign.
func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.publicKey
}

// Sign produces an Ed25519 signature over digest using the wallet's private
// key. The private key itself never leaves the wallet.
func (w *Wallet) Sign(digest []byte) ([]byte, error) {
	return signature.Sign(w.privateKey, digest)
}
