package ingestion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sol-memebot/internal/observability"
)

// ErrNoListingSource is returned by FetchListings when the scanner has no listing source.
var ErrNoListingSource = errors.New("no listing source configured")

// Scanner composes independent providers into a DataSource.
// Every secondary lookup is best-effort: a failure is logged and the
// corresponding Enrichment part stays nil.
type Scanner struct {
	listings ListingSource
	holders  HolderSource
	metadata MetadataSource
	pairs    PairSource

	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// ScannerOptions contains configuration for creating a Scanner.
// Only Listings is required.
type ScannerOptions struct {
	Listings ListingSource
	Holders  HolderSource
	Metadata MetadataSource
	Pairs    PairSource

	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewScanner creates a scanner from the provided sources.
func NewScanner(opts ScannerOptions) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		listings: opts.Listings,
		holders:  opts.Holders,
		metadata: opts.Metadata,
		pairs:    opts.Pairs,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

var _ DataSource = (*Scanner)(nil)

// FetchListings polls the listing source. Errors are returned to the caller,
// which treats them as an empty poll.
func (s *Scanner) FetchListings(ctx context.Context) ([]RawListing, error) {
	if s.listings == nil {
		return nil, ErrNoListingSource
	}
	start := s.now()
	listings, err := s.listings.FetchListings(ctx)
	s.observe("listings", start, err)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListings(len(listings))
	return listings, nil
}

// Enrich runs every configured secondary lookup for the token.
func (s *Scanner) Enrich(ctx context.Context, tokenID string) Enrichment {
	var enr Enrichment

	if s.holders != nil {
		start := s.now()
		stats, err := s.holders.HolderStats(ctx, tokenID)
		s.observe("holder_stats", start, err)
		if err != nil {
			s.warn("holder stats lookup failed", tokenID, err)
		} else {
			enr.Holders = stats
		}

		start = s.now()
		top, err := s.holders.TopHolders(ctx, tokenID)
		s.observe("top_holders", start, err)
		if err != nil {
			s.warn("top holders lookup failed", tokenID, err)
		} else {
			enr.TopHolders = top
		}
	}

	if s.metadata != nil {
		start := s.now()
		md, err := s.metadata.Metadata(ctx, tokenID)
		s.observe("metadata", start, err)
		if err != nil {
			s.warn("metadata lookup failed", tokenID, err)
		} else {
			enr.Metadata = md
		}
	}

	enr.Pair = s.Refresh(ctx, tokenID)
	return enr
}

// Refresh fetches the token's current pair state, or nil on failure.
func (s *Scanner) Refresh(ctx context.Context, tokenID string) *PairInfo {
	if s.pairs == nil {
		return nil
	}
	start := s.now()
	pair, err := s.pairs.Pair(ctx, tokenID)
	s.observe("pair", start, err)
	if err != nil {
		s.warn("pair lookup failed", tokenID, err)
		return nil
	}
	return pair
}

func (s *Scanner) observe(op string, start time.Time, err error) {
	s.metrics.RecordProviderCall(providerName(op, s), op, s.now().Sub(start).Seconds(), err)
}

func (s *Scanner) warn(msg, tokenID string, err error) {
	s.logger.Warn(msg, zap.String("token_id", tokenID), zap.Error(err))
}

// Named is implemented by sources that report a provider name for metrics.
type Named interface {
	Name() string
}

func providerName(op string, s *Scanner) string {
	var src any
	switch op {
	case "listings":
		src = s.listings
	case "holder_stats", "top_holders":
		src = s.holders
	case "metadata":
		src = s.metadata
	case "pair":
		src = s.pairs
	}
	if n, ok := src.(Named); ok {
		return n.Name()
	}
	return "unknown"
}
