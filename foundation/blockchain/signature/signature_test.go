package signature_test

import (
	"testing"

	"github.com/jrmckee/powchain/foundation/blockchain/signature"
)

func TestHash(t *testing.T) {
	if got := signature.Hash(nil); len(got) != 64 {
		t.Fatalf("Hash(nil) length = %d, want 64", len(got))
	}

	a := signature.Hash([]byte("hello"))
	b := signature.Hash([]byte("hello"))
	if a != b {
		t.Fatalf("Hash is not deterministic: %s != %s", a, b)
	}

	c := signature.Hash([]byte("world"))
	if a == c {
		t.Fatalf("Hash collided for distinct input")
	}
}

func TestZeroHash(t *testing.T) {
	if len(signature.ZeroHash) != 64 {
		t.Fatalf("ZeroHash length = %d, want 64", len(signature.ZeroHash))
	}
	for _, c := range signature.ZeroHash {
		if c != '0' {
			t.Fatalf("ZeroHash contains non-zero character %q", c)
		}
	}
}

func TestSignVerify(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	digest := []byte("a signable digest")
	sig, err := signature.Sign(priv, digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if !signature.Verify(pub, digest, sig) {
		t.Fatalf("Verify returned false for a valid signature")
	}

	if signature.Verify(pub, []byte("a different digest"), sig) {
		t.Fatalf("Verify returned true for a mutated digest")
	}
}

func TestHexRoundTrip(t *testing.T) {
	want := []byte{0x01, 0xAB, 0xFF, 0x00}
	hex := signature.ToHex(want)

	got, err := signature.FromHex(hex)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("FromHex(ToHex(x)) = %x, want %x", got, want)
	}
}
