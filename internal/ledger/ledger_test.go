package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
	"sol-memebot/internal/storage/memory"
)

type failingRuns struct{ storage.RunStore }

func (failingRuns) Insert(context.Context, *domain.RunRecord) error {
	return errors.New("disk full")
}

func TestNew_RequiresStores(t *testing.T) {
	_, err := New(Options{Observations: memory.NewObservationStore()})
	assert.ErrorIs(t, err, ErrMissingStore)
}

func TestLedger_UpsertObservationIsIdempotent(t *testing.T) {
	l, stores := NewMemory()
	ctx := context.Background()
	obs := domain.TokenObservation{ID: "mintA", MarketCapUSD: 100000}

	require.NoError(t, l.UpsertObservation(ctx, obs, 90))
	before, err := stores.Observations.GetByID(ctx, "mintA")
	require.NoError(t, err)

	require.NoError(t, l.UpsertObservation(ctx, obs, 90))
	after, err := stores.Observations.GetByID(ctx, "mintA")
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, 1, stores.Observations.Len())
}

func TestLedger_TradeLifecycle(t *testing.T) {
	l, _ := NewMemory()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	rec := &domain.TradeRecord{
		TradeID: "t1", RunID: "run1", TokenID: "mintA", Action: domain.TradeActionBuy,
		EntryPrice: 1, Quantity: 10, USDInvested: 10, OpenedAt: now, Score: 80,
	}
	require.NoError(t, l.AppendTradeOpen(ctx, rec))

	open, err := l.OpenTrades(ctx, "run1")
	require.NoError(t, err)
	assert.Len(t, open, 1)

	c := domain.TradeClose{ExitPrice: 2, RealizedPnL: 10, ClosedAt: now.Add(time.Minute), Reason: domain.ExitReasonGraduation}
	require.NoError(t, l.UpdateTradeClose(ctx, "run1", "mintA", c))

	err = l.UpdateTradeClose(ctx, "run1", "mintA", c)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	open, err = l.OpenTrades(ctx, "run1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestLedger_RunCompletionErrorsAreWrapped(t *testing.T) {
	l, err := New(Options{
		Observations: memory.NewObservationStore(),
		Trades:       memory.NewTradeStore(),
		Runs:         failingRuns{},
	})
	require.NoError(t, err)

	err = l.AppendRunCompletion(context.Background(), &domain.RunRecord{RunID: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append run completion r1")
}

func TestLedger_RecordSnapshots(t *testing.T) {
	l, stores := NewMemory()
	ctx := context.Background()

	require.NoError(t, l.RecordSnapshots(ctx))
	require.NoError(t, l.RecordSnapshots(ctx,
		domain.ObservationSnapshot{RunID: "r1", TokenID: "mintA", ObservedAt: 1, Phase: domain.SnapshotPhaseIngest},
		domain.ObservationSnapshot{RunID: "r1", TokenID: "mintA", ObservedAt: 2, Phase: domain.SnapshotPhaseExitCheck},
	))

	got, err := stores.Snapshots.GetByToken(ctx, "r1", "mintA")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	noSnapshots, err := New(Options{
		Observations: memory.NewObservationStore(),
		Trades:       memory.NewTradeStore(),
		Runs:         memory.NewRunStore(),
	})
	require.NoError(t, err)
	assert.NoError(t, noSnapshots.RecordSnapshots(ctx, domain.ObservationSnapshot{}))
}
