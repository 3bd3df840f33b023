// Package stub provides scripted data sources for tests and offline runs.
package stub

import (
	"context"
	"sync"

	"sol-memebot/internal/ingestion"
)

// StubDataSource replays scripted polls, enrichments and refresh sequences.
// Implements ingestion.DataSource interface.
type StubDataSource struct {
	mu sync.Mutex

	polls      [][]ingestion.RawListing
	pollErrors map[int]error
	pollCount  int

	enrichments map[string]ingestion.Enrichment
	refreshes   map[string][]*ingestion.PairInfo
	refreshIdx  map[string]int
	enrichCalls map[string]int
}

// NewStubDataSource creates a source whose i-th FetchListings call returns polls[i].
// Calls past the end return no listings.
func NewStubDataSource(polls ...[]ingestion.RawListing) *StubDataSource {
	return &StubDataSource{
		polls:       polls,
		pollErrors:  make(map[int]error),
		enrichments: make(map[string]ingestion.Enrichment),
		refreshes:   make(map[string][]*ingestion.PairInfo),
		refreshIdx:  make(map[string]int),
		enrichCalls: make(map[string]int),
	}
}

var _ ingestion.DataSource = (*StubDataSource)(nil)

// WithEnrichment sets the enrichment returned for tokenID.
func (s *StubDataSource) WithEnrichment(tokenID string, enr ingestion.Enrichment) *StubDataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrichments[tokenID] = enr
	return s
}

// WithRefreshes sets the pair states returned by successive Refresh calls for
// tokenID. The last state repeats once the sequence is exhausted; a nil entry
// simulates a failed refresh.
func (s *StubDataSource) WithRefreshes(tokenID string, pairs ...*ingestion.PairInfo) *StubDataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes[tokenID] = pairs
	s.refreshIdx[tokenID] = 0
	return s
}

// FailPoll makes the n-th (zero-based) FetchListings call return err.
func (s *StubDataSource) FailPoll(n int, err error) *StubDataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollErrors[n] = err
	return s
}

// FetchListings returns the next scripted poll.
func (s *StubDataSource) FetchListings(_ context.Context) ([]ingestion.RawListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.pollCount
	s.pollCount++

	if err, ok := s.pollErrors[n]; ok {
		return nil, err
	}
	if n >= len(s.polls) {
		return nil, nil
	}
	out := make([]ingestion.RawListing, len(s.polls[n]))
	copy(out, s.polls[n])
	return out, nil
}

// Enrich returns the scripted enrichment, or an empty one.
func (s *StubDataSource) Enrich(_ context.Context, tokenID string) ingestion.Enrichment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrichCalls[tokenID]++
	return s.enrichments[tokenID]
}

// Refresh returns the next scripted pair state for tokenID.
func (s *StubDataSource) Refresh(_ context.Context, tokenID string) *ingestion.PairInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.refreshes[tokenID]
	if len(seq) == 0 {
		return nil
	}
	i := s.refreshIdx[tokenID]
	if i >= len(seq) {
		i = len(seq) - 1
	} else {
		s.refreshIdx[tokenID] = i + 1
	}
	if seq[i] == nil {
		return nil
	}
	pair := *seq[i]
	return &pair
}

// Polls returns the number of FetchListings calls made.
func (s *StubDataSource) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCount
}

// EnrichCalls returns the number of Enrich calls made for tokenID.
func (s *StubDataSource) EnrichCalls(tokenID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrichCalls[tokenID]
}

// Pair builds a PairInfo from plain values, for scripting.
func Pair(liquidityUSD, priceUSD, marketCapUSD float64, onRaydium bool) *ingestion.PairInfo {
	dex := "pumpfun"
	if onRaydium {
		dex = ingestion.DexIDRaydium
	}
	return &ingestion.PairInfo{
		DexID:        dex,
		LiquidityUSD: &liquidityUSD,
		PriceUSD:     &priceUSD,
		MarketCapUSD: &marketCapUSD,
		OnRaydium:    onRaydium,
	}
}
