// Package simulation drives a paper-trading run: ingestion, per-observation
// entry and exit decisions over a simulated portfolio, and finalization.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/idhash"
	"sol-memebot/internal/ingestion"
	"sol-memebot/internal/ledger"
	"sol-memebot/internal/observability"
	"sol-memebot/internal/strategy"
)

// ErrMissingDependency is returned by NewRunner without a data source or ledger.
var ErrMissingDependency = errors.New("simulation: data source and ledger are required")

// Skipped-buy causes.
const (
	SkipAlreadyHeld  = "already_held"
	SkipMaxPositions = "max_positions"
	SkipCapital      = "capital"
)

// RunResult summarizes a finished run.
type RunResult struct {
	RunID          string
	Preset         string
	StartedAt      time.Time
	FinishedAt     time.Time
	Observations   int
	Buys           int
	Sells          map[string]int // by exit reason
	RealizedPnLUSD float64
	StartingSOL    float64
	FinalSOL       float64
	OpenPositions  int
}

// Runner executes one simulation run.
type Runner struct {
	runID     string
	source    ingestion.DataSource
	ledger    *ledger.Ledger
	collector *Collector
	params    strategy.Parameters
	cfg       ExecutionConfig
	rng       RandomSource

	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source  ingestion.DataSource
	Ledger  *ledger.Ledger
	Ruggers RuggerChecker // optional
	Params  strategy.Parameters
	Config  ExecutionConfig

	// Random drives slippage and exit multipliers. Nil seeds from the clock.
	Random RandomSource
	// RunID defaults to a random uuid.
	RunID string

	Logger  *zap.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// NewRunner validates the parameters and creates a runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Source == nil || opts.Ledger == nil {
		return nil, ErrMissingDependency
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Random
	if rng == nil {
		rng = NewSeededSource(time.Now().UnixNano())
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Runner{
		runID:  runID,
		source: opts.Source,
		ledger: opts.Ledger,
		collector: NewCollector(CollectorOptions{
			Source:  opts.Source,
			Ruggers: opts.Ruggers,
			Config:  opts.Config,
			Logger:  logger,
			Metrics: opts.Metrics,
			Now:     now,
		}),
		params:  opts.Params,
		cfg:     opts.Config,
		rng:     rng,
		logger:  logger.With(zap.String("run_id", runID)),
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// RunID returns the id every ledger record of this run carries.
func (r *Runner) RunID() string {
	return r.runID
}

// runState is the mutable state of one run.
type runState struct {
	portfolio *Portfolio
	buySeq    int
	result    *RunResult
}

// Run executes the simulation.
// Steps:
//  1. Ingest observations until the deadline, target count or cancellation
//  2. For each observation in arrival order:
//     a. Persist it with its score
//     b. Buy if the entry rule fires and the portfolio allows it
//     c. Re-check every open position and close those that hit an exit rule
//  3. Write the run-completion marker
//
// Cancelling ctx ends ingestion only; what was collected is still decided and
// recorded. Any ledger failure aborts the run.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	started := r.now()
	r.logger.Info("simulation started",
		zap.String("preset", r.params.Name),
		zap.Duration("ingest_duration", r.cfg.IngestDuration),
		zap.Int("target_count", r.cfg.TargetCount))

	// 1. Ingest
	observations := r.collector.Collect(ctx)
	ctx = context.WithoutCancel(ctx)

	st := &runState{
		portfolio: NewPortfolio(r.params.StartingSOLBalance, r.params.MaxPositions),
		result: &RunResult{
			RunID:        r.runID,
			Preset:       r.params.Name,
			StartedAt:    started,
			Observations: len(observations),
			Sells:        make(map[string]int),
			StartingSOL:  r.params.StartingSOLBalance,
		},
	}
	r.metrics.UpdatePortfolio(0, st.portfolio.CapitalSOL())

	// 2. Decide
	for _, obs := range observations {
		if err := r.step(ctx, st, obs); err != nil {
			return nil, err
		}
		if err := st.portfolio.CheckInvariants(); err != nil {
			return nil, err
		}
		r.metrics.UpdatePortfolio(st.portfolio.Len(), st.portfolio.CapitalSOL())
	}

	// 3. Finalize
	return r.finalize(ctx, st)
}

// step handles one observation: persist, entry decision, exit scan.
func (r *Runner) step(ctx context.Context, st *runState, obs domain.TokenObservation) error {
	decision := strategy.Decide(obs, r.params)
	r.metrics.RecordScore(decision.Score)

	if err := r.ledger.UpsertObservation(ctx, obs, decision.Score); err != nil {
		r.metrics.RecordLedgerError("upsert_observation")
		return err
	}
	snap := domain.SnapshotOf(r.runID, obs, r.now().UnixMilli(), domain.SnapshotPhaseIngest)
	snap.Score = &decision.Score
	if err := r.ledger.RecordSnapshots(ctx, snap); err != nil {
		r.metrics.RecordLedgerError("record_snapshots")
		return err
	}

	if decision.ShouldBuy {
		if err := r.buy(ctx, st, obs, decision.Score); err != nil {
			return err
		}
	}
	return r.checkExits(ctx, st)
}

func (r *Runner) buy(ctx context.Context, st *runState, obs domain.TokenObservation, score float64) error {
	switch {
	case st.portfolio.Holds(obs.ID):
		r.skipBuy(obs.ID, SkipAlreadyHeld)
		return nil
	case !st.portfolio.HasCapacity():
		r.skipBuy(obs.ID, SkipMaxPositions)
		return nil
	case st.portfolio.Capital().LessThanOrEqual(decimal.NewFromFloat(r.cfg.MinTradeSOL)):
		r.skipBuy(obs.ID, SkipCapital)
		return nil
	}

	size := st.portfolio.TradeSize(r.params.MaxSOLPerTrade)
	entryPrice := obs.BasePrice * r.cfg.Slippage.Draw(r.rng)
	usdInvested := size.InexactFloat64() * r.params.SOLUSDPrice
	quantity := 0.0
	if entryPrice > 0 {
		quantity = usdInvested / entryPrice
	}
	openedAt := r.now()
	st.buySeq++

	entryObs := obs
	entryObs.EntryMarketCap = obs.MarketCapUSD
	pos := domain.Position{
		TradeID:        idhash.ComputeTradeID(r.runID, obs.ID, openedAt.UnixMilli(), st.buySeq),
		TokenID:        obs.ID,
		EntryPrice:     entryPrice,
		Quantity:       quantity,
		USDInvested:    usdInvested,
		OpenedAt:       openedAt,
		ScoreAtEntry:   score,
		EntryMarketCap: obs.MarketCapUSD,
		EntryLiquidity: obs.LiquidityUSD,
		Observation:    entryObs,
	}
	if err := st.portfolio.Open(pos, size); err != nil {
		return fmt.Errorf("open position %s: %w", obs.ID, err)
	}

	rec := &domain.TradeRecord{
		TradeID:     pos.TradeID,
		RunID:       r.runID,
		TokenID:     obs.ID,
		Action:      domain.TradeActionBuy,
		EntryPrice:  entryPrice,
		Quantity:    quantity,
		USDInvested: usdInvested,
		OpenedAt:    openedAt,
		Score:       score,
	}
	if err := r.ledger.AppendTradeOpen(ctx, rec); err != nil {
		r.metrics.RecordLedgerError("append_trade_open")
		return err
	}

	st.result.Buys++
	r.metrics.RecordBuy()
	r.logger.Info("buy",
		zap.String("token_id", obs.ID),
		zap.Float64("score", score),
		zap.Float64("entry_price", entryPrice),
		zap.String("sol", size.String()),
		zap.Float64("capital_sol", st.portfolio.CapitalSOL()))
	return nil
}

func (r *Runner) skipBuy(tokenID, cause string) {
	r.metrics.RecordSkippedBuy(cause)
	r.logger.Debug("buy skipped", zap.String("token_id", tokenID), zap.String("reason", cause))
}

// pendingClose is an exit decided during a scan, applied after it.
type pendingClose struct {
	tokenID     string
	proceedsSOL float64
}

// checkExits evaluates every open position against a fresh observation.
// The scan works on a copy of the position set; closes are applied after it.
func (r *Runner) checkExits(ctx context.Context, st *runState) error {
	var closes []pendingClose

	for _, pos := range st.portfolio.Positions() {
		fresh := ingestion.ApplyRefresh(pos.Observation, r.source.Refresh(ctx, pos.TokenID), r.cfg.Signals)
		st.portfolio.Observe(pos.TokenID, fresh)

		snap := domain.SnapshotOf(r.runID, fresh, r.now().UnixMilli(), domain.SnapshotPhaseExitCheck)
		if err := r.ledger.RecordSnapshots(ctx, snap); err != nil {
			r.metrics.RecordLedgerError("record_snapshots")
			return err
		}

		exit := strategy.EvaluateExit(strategy.ExitInput{
			EntryMarketCap: pos.EntryMarketCap,
			EntryLiquidity: pos.EntryLiquidity,
			Current:        fresh,
		}, r.params)
		if !exit.ShouldExit {
			continue
		}

		mult := r.cfg.ExitBand(exit.Reason).Draw(r.rng)
		exitPrice := pos.EntryPrice * mult
		proceeds := pos.Quantity * exitPrice
		pnl := proceeds - pos.USDInvested

		err := r.ledger.UpdateTradeClose(ctx, r.runID, pos.TokenID, domain.TradeClose{
			ExitPrice:   exitPrice,
			RealizedPnL: pnl,
			ClosedAt:    r.now(),
			Reason:      exit.Reason,
		})
		if err != nil {
			r.metrics.RecordLedgerError("update_trade_close")
			return err
		}

		closes = append(closes, pendingClose{tokenID: pos.TokenID, proceedsSOL: proceeds / r.params.SOLUSDPrice})
		st.result.Sells[exit.Reason]++
		st.result.RealizedPnLUSD += pnl
		r.metrics.RecordSell(exit.Reason)
		r.logger.Info("sell",
			zap.String("token_id", pos.TokenID),
			zap.String("reason", exit.Reason),
			zap.Float64("multiplier", mult),
			zap.Float64("pnl_usd", pnl))
	}

	for _, c := range closes {
		if err := st.portfolio.Close(c.tokenID, c.proceedsSOL); err != nil {
			return fmt.Errorf("close position %s: %w", c.tokenID, err)
		}
	}
	return nil
}

func (r *Runner) finalize(ctx context.Context, st *runState) (*RunResult, error) {
	res := st.result
	res.FinishedAt = r.now()
	res.FinalSOL = st.portfolio.CapitalSOL()
	res.OpenPositions = st.portfolio.Len()

	run := &domain.RunRecord{
		RunID:            r.runID,
		Preset:           r.params.Name,
		StartedAt:        res.StartedAt,
		FinishedAt:       res.FinishedAt,
		StartingSOL:      res.StartingSOL,
		FinalSOL:         res.FinalSOL,
		OpenPositions:    res.OpenPositions,
		ObservationsSeen: res.Observations,
	}
	if err := r.ledger.AppendRunCompletion(ctx, run); err != nil {
		r.metrics.RecordLedgerError("append_run_completion")
		return nil, err
	}

	r.metrics.RecordRunCompleted(res.FinishedAt.Unix())
	r.logger.Info("simulation finished",
		zap.Int("observations", res.Observations),
		zap.Int("buys", res.Buys),
		zap.Float64("capital_sol", res.FinalSOL),
		zap.Int("open_positions", res.OpenPositions))
	return res, nil
}
