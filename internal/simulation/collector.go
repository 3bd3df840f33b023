package simulation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/ingestion"
	"sol-memebot/internal/observability"
)

// RuggerChecker reports whether a dev wallet is flagged as a known rugger.
// storage.RuggerStore satisfies it.
type RuggerChecker interface {
	IsKnown(ctx context.Context, wallet string) (bool, error)
}

// Collector runs the ingestion phase: it polls the data source, normalizes and
// enriches every listing, and buffers the observations in arrival order.
type Collector struct {
	source  ingestion.DataSource
	ruggers RuggerChecker
	cfg     ExecutionConfig

	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration)
}

// CollectorOptions contains configuration for creating a Collector.
type CollectorOptions struct {
	Source  ingestion.DataSource
	Ruggers RuggerChecker // optional
	Config  ExecutionConfig

	Logger  *zap.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// NewCollector creates a collector.
func NewCollector(opts CollectorOptions) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Collector{
		source:  opts.Source,
		ruggers: opts.Ruggers,
		cfg:     opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
		sleep:   sleepContext,
	}
}

// Collect polls until the ingestion deadline passes, the target count is
// reached or ctx is cancelled. Stop conditions are checked between polls and
// between listings; an in-flight fetch always finishes. Fetch failures count
// as empty polls.
func (c *Collector) Collect(ctx context.Context) []domain.TokenObservation {
	var deadline time.Time
	if c.cfg.IngestDuration > 0 {
		deadline = c.now().Add(c.cfg.IngestDuration)
	}

	var buffer []domain.TokenObservation
	stop := func() string {
		switch {
		case ctx.Err() != nil:
			return "cancelled"
		case c.cfg.TargetCount > 0 && len(buffer) >= c.cfg.TargetCount:
			return "target_count"
		case !deadline.IsZero() && !c.now().Before(deadline):
			return "deadline"
		}
		return ""
	}

	for poll := 0; ; poll++ {
		if reason := stop(); reason != "" {
			c.logger.Info("ingestion stopped",
				zap.String("reason", reason),
				zap.Int("polls", poll),
				zap.Int("observations", len(buffer)))
			return buffer
		}

		listings, err := c.source.FetchListings(ctx)
		if err != nil {
			c.logger.Warn("fetch listings failed", zap.Int("poll", poll), zap.Error(err))
		}
		c.logger.Debug("fetched listings", zap.Int("poll", poll), zap.Int("count", len(listings)))

		for _, raw := range listings {
			if stop() != "" {
				break
			}
			obs, ok := c.observe(ctx, raw)
			if !ok {
				continue
			}
			buffer = append(buffer, obs)
			c.metrics.RecordQueued()
		}

		if stop() == "" {
			c.sleep(ctx, c.cfg.PollInterval)
		}
	}
}

// observe turns one raw listing into an enriched observation.
func (c *Collector) observe(ctx context.Context, raw ingestion.RawListing) (domain.TokenObservation, bool) {
	obs := ingestion.Normalize(raw)
	if obs.ID == "" {
		c.logger.Debug("skipping listing without token address")
		return obs, false
	}

	enr := c.source.Enrich(ctx, obs.ID)
	obs = ingestion.ApplyEnrichment(obs, enr)
	if raw.SOLQuoted {
		obs = ingestion.PreferPairQuotes(obs, enr.Pair)
	}
	obs = ingestion.DeriveSignals(obs, c.cfg.Signals)

	if c.ruggers != nil && obs.DevWalletAddress != nil {
		known, err := c.ruggers.IsKnown(ctx, *obs.DevWalletAddress)
		if err != nil {
			c.logger.Warn("rugger lookup failed",
				zap.String("token_id", obs.ID),
				zap.Error(err))
		} else {
			obs.IsDevKnownRugger = known
		}
	}
	return obs, true
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
