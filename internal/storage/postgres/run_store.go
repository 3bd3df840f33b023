package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run-completion marker. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulation_runs (
			run_id, preset, started_at, finished_at,
			starting_sol, final_sol, open_positions, observations_seen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Preset, r.StartedAt, r.FinishedAt,
		r.StartingSOL, r.FinalSOL, r.OpenPositions, r.ObservationsSeen,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by id. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	return s.getOne(ctx, `
		SELECT run_id, preset, started_at, finished_at,
			starting_sol, final_sol, open_positions, observations_seen
		FROM simulation_runs
		WHERE run_id = $1
	`, runID)
}

// Latest retrieves the most recently finished run.
func (s *RunStore) Latest(ctx context.Context) (*domain.RunRecord, error) {
	return s.getOne(ctx, `
		SELECT run_id, preset, started_at, finished_at,
			starting_sol, final_sol, open_positions, observations_seen
		FROM simulation_runs
		ORDER BY finished_at DESC, run_id DESC
		LIMIT 1
	`)
}

func (s *RunStore) getOne(ctx context.Context, query string, args ...any) (*domain.RunRecord, error) {
	r, err := scanRunRecord(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get simulation run: %w", err)
	}
	return r, nil
}

func scanRunRecord(row pgx.Row) (*domain.RunRecord, error) {
	var r domain.RunRecord
	err := row.Scan(
		&r.RunID, &r.Preset, &r.StartedAt, &r.FinishedAt,
		&r.StartingSOL, &r.FinalSOL, &r.OpenPositions, &r.ObservationsSeen,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
