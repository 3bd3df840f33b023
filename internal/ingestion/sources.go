package ingestion

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned by HTTP adapters for non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// RawListing is a provider-neutral new-token listing. Numeric fields are kept as
// strings because providers disagree on their encoding; Normalize parses them.
type RawListing struct {
	TokenAddress string
	Name         string
	Symbol       string
	Category     string
	PriceUSD     string
	LiquidityUSD string
	MarketCapUSD string
	Creator      string // creator wallet, if the provider reports it
	CreatedAt    string

	// SOLQuoted marks PriceUSD and MarketCapUSD as SOL amounts converted at
	// a configured rate. A USD quote from the pair replaces them.
	SOLQuoted bool
}

// HolderStats is the holder summary for a token.
type HolderStats struct {
	Total int64
}

// TopHolder is one entry of a token's largest holders, ordered by size.
type TopHolder struct {
	OwnerAddress    string
	PercentOfSupply float64
}

// TokenMetadata carries the mint's authority settings.
type TokenMetadata struct {
	MintAuthority   string
	FreezeAuthority string
	IsMutable       bool
}

// PairInfo is the current market state of a token's trading pair(s).
type PairInfo struct {
	DexID        string
	LiquidityUSD *float64
	PriceUSD     *float64
	MarketCapUSD *float64
	OnRaydium    bool // any pair for the token trades on Raydium
}

// Enrichment bundles secondary lookups. Each part is nil when its call failed.
type Enrichment struct {
	Holders    *HolderStats
	TopHolders []TopHolder
	Metadata   *TokenMetadata
	Pair       *PairInfo
}

// ListingSource polls for newly listed tokens.
type ListingSource interface {
	// FetchListings returns the listings available now. An empty result is valid.
	FetchListings(ctx context.Context) ([]RawListing, error)
}

// HolderSource provides holder statistics.
type HolderSource interface {
	HolderStats(ctx context.Context, mint string) (*HolderStats, error)
	TopHolders(ctx context.Context, mint string) ([]TopHolder, error)
}

// MetadataSource provides token mint metadata.
type MetadataSource interface {
	Metadata(ctx context.Context, mint string) (*TokenMetadata, error)
}

// PairSource provides liquidity and price for a token.
type PairSource interface {
	Pair(ctx context.Context, mint string) (*PairInfo, error)
}

// DataSource is everything the simulation needs from the outside world.
// Enrich and Refresh are best-effort: failures surface as nil parts, never as errors.
type DataSource interface {
	FetchListings(ctx context.Context) ([]RawListing, error)
	Enrich(ctx context.Context, tokenID string) Enrichment
	Refresh(ctx context.Context, tokenID string) *PairInfo
}
