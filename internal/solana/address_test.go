package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func walletAddress(t *testing.T, seed byte) string {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	pub := ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey)
	return base58.Encode(pub)
}

// offCurveAddress hashes until it finds 32 bytes that are not a curve point,
// the same search a program-derived address performs.
func offCurveAddress(t *testing.T) string {
	t.Helper()
	for i := 0; i < 256; i++ {
		h := sha256.Sum256([]byte{byte(i), 'p', 'd', 'a'})
		addr := base58.Encode(h[:])
		if !IsOnCurve(addr) {
			return addr
		}
	}
	t.Fatal("no off-curve address found")
	return ""
}

func TestDecodeAddress(t *testing.T) {
	addr := walletAddress(t, 1)
	b, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if len(b) != PublicKeyLength {
		t.Errorf("expected %d bytes, got %d", PublicKeyLength, len(b))
	}
}

func TestDecodeAddress_Invalid(t *testing.T) {
	tests := []string{
		"",
		"not-base58-0OIl",
		base58.Encode([]byte{1, 2, 3}),
	}
	for _, addr := range tests {
		if _, err := DecodeAddress(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("DecodeAddress(%q): expected ErrInvalidAddress, got %v", addr, err)
		}
		if IsValidAddress(addr) {
			t.Errorf("IsValidAddress(%q) = true", addr)
		}
	}
}

func TestIsOnCurve(t *testing.T) {
	for seed := byte(1); seed < 5; seed++ {
		addr := walletAddress(t, seed)
		if !IsOnCurve(addr) || !IsWallet(addr) {
			t.Errorf("wallet %s should be on curve", addr)
		}
	}

	pda := offCurveAddress(t)
	if !IsValidAddress(pda) {
		t.Fatalf("pda %s should still be a valid address", pda)
	}
	if IsWallet(pda) {
		t.Errorf("pda %s should not be treated as a wallet", pda)
	}
	if IsOnCurve("garbage") {
		t.Error("invalid address reported on curve")
	}
}
