package stub

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/mr-tron/base58"

	"sol-memebot/internal/ingestion"
)

// GeneratedSource invents plausible new listings and random-walk market data
// from a seed. It lets the simulator run offline.
type GeneratedSource struct {
	mu       sync.Mutex
	rng      *rand.Rand
	perPoll  int
	tokens   map[string]*generatedToken
	sequence int
}

type generatedToken struct {
	creator      string
	marketCapUSD float64
	liquidityUSD float64
	priceUSD     float64
	holders      int64
	devPct       float64
	mutable      bool
	freeze       bool
}

// NewGeneratedSource creates a generator emitting perPoll listings per poll.
func NewGeneratedSource(seed int64, perPoll int) *GeneratedSource {
	if perPoll <= 0 {
		perPoll = 5
	}
	return &GeneratedSource{
		rng:     rand.New(rand.NewSource(seed)),
		perPoll: perPoll,
		tokens:  make(map[string]*generatedToken),
	}
}

var _ ingestion.DataSource = (*GeneratedSource)(nil)

// FetchListings emits a fresh batch of tokens.
func (g *GeneratedSource) FetchListings(_ context.Context) ([]ingestion.RawListing, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]ingestion.RawListing, 0, g.perPoll)
	for i := 0; i < g.perPoll; i++ {
		g.sequence++
		mint := g.address()
		tok := &generatedToken{
			creator:      g.address(),
			marketCapUSD: 2_000 + g.rng.Float64()*400_000,
			liquidityUSD: g.rng.Float64() * 20_000,
			holders:      int64(g.rng.Intn(600)),
			devPct:       g.rng.Float64() * 25,
			mutable:      g.rng.Float64() < 0.2,
			freeze:       g.rng.Float64() < 0.1,
		}
		tok.priceUSD = tok.marketCapUSD / 1e9
		g.tokens[mint] = tok

		out = append(out, ingestion.RawListing{
			TokenAddress: mint,
			Name:         fmt.Sprintf("Generated %d", g.sequence),
			Symbol:       fmt.Sprintf("GEN%d", g.sequence),
			Category:     ingestion.CategoryPumpFun,
			PriceUSD:     strconv.FormatFloat(tok.priceUSD, 'f', -1, 64),
			MarketCapUSD: strconv.FormatFloat(tok.marketCapUSD, 'f', -1, 64),
			Creator:      tok.creator,
		})
	}
	return out, nil
}

// Enrich reports the token's generated holders, metadata and pair.
func (g *GeneratedSource) Enrich(_ context.Context, tokenID string) ingestion.Enrichment {
	g.mu.Lock()
	defer g.mu.Unlock()

	tok, ok := g.tokens[tokenID]
	if !ok {
		return ingestion.Enrichment{}
	}
	return ingestion.Enrichment{
		Holders: &ingestion.HolderStats{Total: tok.holders},
		TopHolders: []ingestion.TopHolder{
			{OwnerAddress: tok.creator, PercentOfSupply: tok.devPct},
		},
		Metadata: &ingestion.TokenMetadata{
			FreezeAuthority: freezeAuthority(tok.freeze, tok.creator),
			IsMutable:       tok.mutable,
		},
		Pair: tok.pair(false),
	}
}

// Refresh moves the token's market cap and liquidity by a random step.
func (g *GeneratedSource) Refresh(_ context.Context, tokenID string) *ingestion.PairInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	tok, ok := g.tokens[tokenID]
	if !ok {
		return nil
	}
	tok.marketCapUSD *= 0.7 + g.rng.Float64()*0.9
	tok.liquidityUSD *= 0.8 + g.rng.Float64()*1.8
	tok.priceUSD = tok.marketCapUSD / 1e9
	return tok.pair(g.rng.Float64() < 0.05)
}

func (g *GeneratedSource) address() string {
	b := make([]byte, 32)
	g.rng.Read(b)
	return base58.Encode(b)
}

func (t *generatedToken) pair(raydium bool) *ingestion.PairInfo {
	liq, price, mc := t.liquidityUSD, t.priceUSD, t.marketCapUSD
	dex := "pumpfun"
	if raydium {
		dex = ingestion.DexIDRaydium
	}
	return &ingestion.PairInfo{
		DexID:        dex,
		LiquidityUSD: &liq,
		PriceUSD:     &price,
		MarketCapUSD: &mc,
		OnRaydium:    raydium,
	}
}

func freezeAuthority(set bool, owner string) string {
	if set {
		return owner
	}
	return ""
}
