package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-memebot/internal/observability"
)

type fakeListings struct {
	listings []RawListing
	err      error
}

func (f *fakeListings) Name() string { return "fake" }

func (f *fakeListings) FetchListings(context.Context) ([]RawListing, error) {
	return f.listings, f.err
}

type fakeHolders struct {
	stats    *HolderStats
	statsErr error
	top      []TopHolder
	topErr   error
}

func (f *fakeHolders) Name() string { return "fake" }

func (f *fakeHolders) HolderStats(context.Context, string) (*HolderStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeHolders) TopHolders(context.Context, string) ([]TopHolder, error) {
	return f.top, f.topErr
}

type fakeMetadata struct {
	md  *TokenMetadata
	err error
}

func (f *fakeMetadata) Metadata(context.Context, string) (*TokenMetadata, error) {
	return f.md, f.err
}

type fakePairs struct {
	pair *PairInfo
	err  error
}

func (f *fakePairs) Name() string { return "fake" }

func (f *fakePairs) Pair(context.Context, string) (*PairInfo, error) {
	return f.pair, f.err
}

func TestScanner_FetchListings(t *testing.T) {
	s := NewScanner(ScannerOptions{
		Listings: &fakeListings{listings: []RawListing{{TokenAddress: "a"}, {TokenAddress: "b"}}},
	})

	got, err := s.FetchListings(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestScanner_FetchListingsWithoutSource(t *testing.T) {
	s := NewScanner(ScannerOptions{})
	_, err := s.FetchListings(context.Background())
	assert.ErrorIs(t, err, ErrNoListingSource)
}

func TestScanner_EnrichAllParts(t *testing.T) {
	s := NewScanner(ScannerOptions{
		Listings: &fakeListings{},
		Holders: &fakeHolders{
			stats: &HolderStats{Total: 10},
			top:   []TopHolder{{OwnerAddress: "x", PercentOfSupply: 1}},
		},
		Metadata: &fakeMetadata{md: &TokenMetadata{IsMutable: true}},
		Pairs:    &fakePairs{pair: &PairInfo{DexID: "raydium", OnRaydium: true}},
	})

	enr := s.Enrich(context.Background(), "mint")
	require.NotNil(t, enr.Holders)
	assert.Equal(t, int64(10), enr.Holders.Total)
	assert.Len(t, enr.TopHolders, 1)
	require.NotNil(t, enr.Metadata)
	assert.True(t, enr.Metadata.IsMutable)
	require.NotNil(t, enr.Pair)
	assert.True(t, enr.Pair.OnRaydium)
}

func TestScanner_EnrichFailuresAreIndependent(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	boom := errors.New("boom")

	s := NewScanner(ScannerOptions{
		Listings: &fakeListings{},
		Holders:  &fakeHolders{statsErr: boom, top: []TopHolder{{OwnerAddress: "x"}}},
		Metadata: &fakeMetadata{err: boom},
		Pairs:    &fakePairs{err: boom},
		Metrics:  metrics,
	})

	enr := s.Enrich(context.Background(), "mint")
	assert.Nil(t, enr.Holders)
	assert.Len(t, enr.TopHolders, 1)
	assert.Nil(t, enr.Metadata)
	assert.Nil(t, enr.Pair)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderErrors.WithLabelValues("fake", "holder_stats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderErrors.WithLabelValues("unknown", "metadata")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderErrors.WithLabelValues("fake", "pair")))
}

func TestScanner_NoSecondarySources(t *testing.T) {
	s := NewScanner(ScannerOptions{Listings: &fakeListings{}})
	assert.Equal(t, Enrichment{}, s.Enrich(context.Background(), "mint"))
	assert.Nil(t, s.Refresh(context.Background(), "mint"))
}
