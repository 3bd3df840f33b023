package ingestion

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"sol-memebot/internal/solana"
)

func testWallet(t *testing.T, seed byte) string {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return base58.Encode(ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey))
}

func testProgramAddress(t *testing.T) string {
	t.Helper()
	for i := 0; i < 256; i++ {
		h := sha256.Sum256([]byte{byte(i), 'c', 'u', 'r', 'v', 'e'})
		addr := base58.Encode(h[:])
		if !solana.IsOnCurve(addr) {
			return addr
		}
	}
	t.Fatal("no off-curve address found")
	return ""
}

func f64(v float64) *float64 { return &v }

func zapNop() *zap.Logger { return zap.NewNop() }
