// Package ledger records observations, trades and run markers for a simulation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
	"sol-memebot/internal/storage/memory"
)

// ErrMissingStore is returned by New when a required store is nil.
var ErrMissingStore = errors.New("ledger: missing required store")

// Ledger is the write side of the simulation's persisted record.
// Observation upserts are idempotent and trade closes are update-once, so a
// replayed run cannot corrupt what is already stored.
type Ledger struct {
	observations storage.ObservationStore
	trades       storage.TradeStore
	runs         storage.RunStore
	snapshots    storage.SnapshotStore // optional
	now          func() time.Time
}

// Options contains configuration for creating a Ledger.
type Options struct {
	Observations storage.ObservationStore
	Trades       storage.TradeStore
	Runs         storage.RunStore
	Snapshots    storage.SnapshotStore // nil disables the snapshot series
	Now          func() time.Time
}

// New creates a ledger over the given stores.
func New(opts Options) (*Ledger, error) {
	if opts.Observations == nil || opts.Trades == nil || opts.Runs == nil {
		return nil, ErrMissingStore
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		observations: opts.Observations,
		trades:       opts.Trades,
		runs:         opts.Runs,
		snapshots:    opts.Snapshots,
		now:          now,
	}, nil
}

// MemoryStores exposes the stores behind a memory ledger.
type MemoryStores struct {
	Observations *memory.ObservationStore
	Trades       *memory.TradeStore
	Runs         *memory.RunStore
	Snapshots    *memory.SnapshotStore
}

// NewMemory creates a ledger backed entirely by in-memory stores.
func NewMemory() (*Ledger, *MemoryStores) {
	stores := &MemoryStores{
		Observations: memory.NewObservationStore(),
		Trades:       memory.NewTradeStore(),
		Runs:         memory.NewRunStore(),
		Snapshots:    memory.NewSnapshotStore(),
	}
	l, _ := New(Options{
		Observations: stores.Observations,
		Trades:       stores.Trades,
		Runs:         stores.Runs,
		Snapshots:    stores.Snapshots,
	})
	return l, stores
}

// UpsertObservation persists an observation and its score, keyed by token id.
// Replaying the same id is a no-op.
func (l *Ledger) UpsertObservation(ctx context.Context, obs domain.TokenObservation, score float64) error {
	if err := l.observations.Upsert(ctx, &obs, score, l.now()); err != nil {
		return fmt.Errorf("upsert observation %s: %w", obs.ID, err)
	}
	return nil
}

// AppendTradeOpen writes the BUY record of a newly opened position.
func (l *Ledger) AppendTradeOpen(ctx context.Context, rec *domain.TradeRecord) error {
	if err := l.trades.InsertOpen(ctx, rec); err != nil {
		return fmt.Errorf("append trade open %s: %w", rec.TokenID, err)
	}
	return nil
}

// UpdateTradeClose writes the SELL fields onto the single open BUY record of
// the token within the run.
func (l *Ledger) UpdateTradeClose(ctx context.Context, runID, tokenID string, c domain.TradeClose) error {
	if err := l.trades.Close(ctx, runID, tokenID, c); err != nil {
		return fmt.Errorf("update trade close %s: %w", tokenID, err)
	}
	return nil
}

// AppendRunCompletion writes the run-completion marker.
func (l *Ledger) AppendRunCompletion(ctx context.Context, run *domain.RunRecord) error {
	if err := l.runs.Insert(ctx, run); err != nil {
		return fmt.Errorf("append run completion %s: %w", run.RunID, err)
	}
	return nil
}

// RecordSnapshots appends observation snapshots. Without a snapshot store it is a no-op.
func (l *Ledger) RecordSnapshots(ctx context.Context, snaps ...domain.ObservationSnapshot) error {
	if l.snapshots == nil || len(snaps) == 0 {
		return nil
	}
	ptrs := make([]*domain.ObservationSnapshot, len(snaps))
	for i := range snaps {
		ptrs[i] = &snaps[i]
	}
	if err := l.snapshots.InsertBulk(ctx, ptrs); err != nil {
		return fmt.Errorf("record snapshots: %w", err)
	}
	return nil
}

// OpenTrades returns the run's trades that have not been closed.
func (l *Ledger) OpenTrades(ctx context.Context, runID string) ([]*domain.TradeRecord, error) {
	trades, err := l.trades.GetOpen(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get open trades: %w", err)
	}
	return trades, nil
}
