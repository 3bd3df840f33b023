// Package metrics computes performance aggregates over a run's trade records.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// ErrNoTrades is returned when a run has no trades to aggregate.
var ErrNoTrades = errors.New("no trades available for aggregation")

// Aggregator computes run aggregates from trade records.
type Aggregator struct {
	trades storage.TradeStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(trades storage.TradeStore) *Aggregator {
	return &Aggregator{trades: trades}
}

// ComputeRun loads the trades of runID and aggregates them.
// Returns ErrNoTrades if the run opened no positions.
func (a *Aggregator) ComputeRun(ctx context.Context, runID string) (*domain.RunAggregate, error) {
	trades, err := a.trades.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades for run %s: %w", runID, err)
	}
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}
	return Aggregate(runID, trades), nil
}

// Aggregate computes the aggregate of already loaded trades.
func Aggregate(runID string, trades []*domain.TradeRecord) *domain.RunAggregate {
	return computeFromTrades(runID, trades)
}
