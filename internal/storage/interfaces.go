package storage

import (
	"context"
	"time"

	"sol-memebot/internal/domain"
)

// ObservationStore provides access to token_observations storage.
type ObservationStore interface {
	// Upsert stores the observation keyed by token id. A conflicting id is a
	// no-op, so replaying the same observation leaves the store unchanged.
	Upsert(ctx context.Context, obs *domain.TokenObservation, score float64, seenAt time.Time) error

	// GetByID retrieves an observation by token id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.ObservationRecord, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// InsertOpen adds an open BUY record. Returns ErrDuplicateKey if the
	// trade_id exists or the run already holds an open record for the token.
	InsertOpen(ctx context.Context, t *domain.TradeRecord) error

	// Close turns the single open BUY record of (runID, tokenID) into a SELL.
	// Returns ErrNotFound when no open record matches and ErrAmbiguousOpenTrade
	// when more than one does.
	Close(ctx context.Context, runID, tokenID string, c domain.TradeClose) error

	// GetByRun retrieves all trades of a run, ordered by opened_at ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.TradeRecord, error)

	// GetOpen retrieves the still-open trades of a run, ordered by opened_at ASC.
	GetOpen(ctx context.Context, runID string) ([]*domain.TradeRecord, error)
}

// RunStore provides access to simulation_runs storage.
type RunStore interface {
	// Insert adds a run-completion marker. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// Latest retrieves the most recently finished run. Returns ErrNotFound if none.
	Latest(ctx context.Context) (*domain.RunRecord, error)
}

// RuggerStore provides access to the known_ruggers registry.
type RuggerStore interface {
	// IsKnown reports whether the wallet is flagged.
	IsKnown(ctx context.Context, wallet string) (bool, error)

	// Add flags a wallet. Re-adding an existing wallet updates its note.
	Add(ctx context.Context, r *domain.Rugger) error

	// Remove unflags a wallet. Returns ErrNotFound if not flagged.
	Remove(ctx context.Context, wallet string) error

	// List retrieves all flagged wallets ordered by wallet.
	List(ctx context.Context) ([]*domain.Rugger, error)
}

// SnapshotStore provides access to the observation_snapshots time series.
type SnapshotStore interface {
	// InsertBulk appends snapshots. Re-inserting a snapshot with the same
	// (run_id, token_id, observed_at, phase) key does not create a second row.
	InsertBulk(ctx context.Context, snaps []*domain.ObservationSnapshot) error

	// GetByToken retrieves a token's snapshots within a run, ordered by observed_at ASC.
	GetByToken(ctx context.Context, runID, tokenID string) ([]*domain.ObservationSnapshot, error)
}
