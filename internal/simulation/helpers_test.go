package simulation

import (
	"crypto/ed25519"
	"strconv"
	"testing"
	"time"

	"github.com/mr-tron/base58"

	"sol-memebot/internal/ingestion"
	"sol-memebot/internal/ingestion/stub"
)

// fixedSource always draws v, so every band yields Min + v*(Max-Min).
type fixedSource struct{ v float64 }

func (f fixedSource) Float64() float64 { return f.v }

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func testWallet(t *testing.T, seed byte) string {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return base58.Encode(ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey))
}

func listing(id string, priceUSD, liquidityUSD, marketCapUSD float64) ingestion.RawListing {
	return ingestion.RawListing{
		TokenAddress: id,
		Category:     ingestion.CategoryPumpFun,
		PriceUSD:     strconv.FormatFloat(priceUSD, 'f', -1, 64),
		LiquidityUSD: strconv.FormatFloat(liquidityUSD, 'f', -1, 64),
		MarketCapUSD: strconv.FormatFloat(marketCapUSD, 'f', -1, 64),
	}
}

// buyable is a listing the default preset buys: momentum without the
// graduation band, 250 holders once enriched.
func buyable(id string) ingestion.RawListing {
	return listing(id, 0.00002, 5_000, 20_000)
}

// unbuyable fails the market cap filter.
func unbuyable(id string) ingestion.RawListing {
	return listing(id, 0.00002, 5_000, 0)
}

func withHolders(src *stub.StubDataSource, holders int64, ids ...string) *stub.StubDataSource {
	for _, id := range ids {
		src.WithEnrichment(id, ingestion.Enrichment{Holders: &ingestion.HolderStats{Total: holders}})
	}
	return src
}

// holdPair keeps a buyable position open: no signal, no price move.
func holdPair() *ingestion.PairInfo {
	return stub.Pair(900, 0.00002, 20_000, false)
}

// crashPair trips the default stop loss for a 20k entry.
func crashPair() *ingestion.PairInfo {
	return stub.Pair(900, 0.00001, 10_000, false)
}
