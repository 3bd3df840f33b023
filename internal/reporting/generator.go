package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/metrics"
	"sol-memebot/internal/storage"
)

// Generator produces run reports from stored data.
type Generator struct {
	runStore   storage.RunStore
	tradeStore storage.TradeStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.RunStore, tradeStore storage.TradeStore) *Generator {
	return &Generator{
		runStore:   runStore,
		tradeStore: tradeStore,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// GenerateLatest reports on the most recently finished run.
func (g *Generator) GenerateLatest(ctx context.Context) (*Report, error) {
	run, err := g.runStore.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	return g.Generate(ctx, run.RunID)
}

// Generate produces the report of runID. A run without a completion marker is
// still reported from its trades and flagged incomplete.
// Returns storage.ErrNotFound when neither a run record nor trades exist.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	trades, err := g.tradeStore.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades for run %s: %w", runID, err)
	}
	if run == nil && len(trades) == 0 {
		return nil, storage.ErrNotFound
	}

	report := &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		Run:         run,
		Summary:     summarize(run, trades),
		Trades:      tradeRows(trades),
	}
	if len(trades) > 0 {
		report.Aggregate = metrics.Aggregate(runID, trades)
	}
	return report, nil
}

func summarize(run *domain.RunRecord, trades []*domain.TradeRecord) Summary {
	if run == nil {
		open := 0
		for _, t := range trades {
			if t.IsOpen() {
				open++
			}
		}
		return Summary{OpenPositions: open}
	}

	start := decimal.NewFromFloat(run.StartingSOL)
	final := decimal.NewFromFloat(run.FinalSOL)
	change := final.Sub(start)
	pct := decimal.Zero
	if start.IsPositive() {
		pct = change.Div(start).Mul(decimal.NewFromInt(100))
	}
	return Summary{
		Preset:        run.Preset,
		StartingSOL:   start,
		FinalSOL:      final,
		ChangeSOL:     change,
		ChangePct:     pct,
		OpenPositions: run.OpenPositions,
		Observations:  run.ObservationsSeen,
		Duration:      run.FinishedAt.Sub(run.StartedAt),
		Complete:      true,
	}
}

func tradeRows(trades []*domain.TradeRecord) []TradeRow {
	rows := make([]TradeRow, len(trades))
	for i, t := range trades {
		row := TradeRow{
			TradeID:     t.TradeID,
			TokenID:     t.TokenID,
			Status:      StatusOpen,
			Score:       t.Score,
			EntryPrice:  t.EntryPrice,
			ExitPrice:   t.ExitPrice,
			USDInvested: t.USDInvested,
			PnLUSD:      t.RealizedPnL,
			OpenedAt:    t.OpenedAt,
			ClosedAt:    t.ClosedAt,
		}
		if !t.IsOpen() {
			row.Status = StatusClosed
		}
		if t.ExitReason != nil {
			row.ExitReason = *t.ExitReason
		}
		if t.RealizedPnL != nil && t.USDInvested > 0 {
			ret := *t.RealizedPnL / t.USDInvested * 100
			row.ReturnPct = &ret
		}
		rows[i] = row
	}
	return rows
}
