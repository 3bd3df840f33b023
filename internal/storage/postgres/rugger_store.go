package postgres

import (
	"context"
	"fmt"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// RuggerStore implements storage.RuggerStore using PostgreSQL.
type RuggerStore struct {
	pool *Pool
}

// NewRuggerStore creates a new RuggerStore.
func NewRuggerStore(pool *Pool) *RuggerStore {
	return &RuggerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RuggerStore = (*RuggerStore)(nil)

// IsKnown reports whether the wallet is flagged.
func (s *RuggerStore) IsKnown(ctx context.Context, wallet string) (bool, error) {
	var known bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM known_ruggers WHERE wallet = $1)`, wallet,
	).Scan(&known)
	if err != nil {
		return false, fmt.Errorf("check known rugger: %w", err)
	}
	return known, nil
}

// Add flags a wallet; an existing entry only has its note replaced.
func (s *RuggerStore) Add(ctx context.Context, r *domain.Rugger) error {
	if r == nil || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO known_ruggers (wallet, note)
		VALUES ($1, $2)
		ON CONFLICT (wallet) DO UPDATE SET note = EXCLUDED.note
	`, r.Wallet, r.Note)
	if err != nil {
		return fmt.Errorf("add known rugger: %w", err)
	}
	return nil
}

// Remove unflags a wallet. Returns ErrNotFound if not flagged.
func (s *RuggerStore) Remove(ctx context.Context, wallet string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM known_ruggers WHERE wallet = $1`, wallet)
	if err != nil {
		return fmt.Errorf("remove known rugger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves all flagged wallets ordered by wallet.
func (s *RuggerStore) List(ctx context.Context) ([]*domain.Rugger, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT wallet, note, added_at FROM known_ruggers ORDER BY wallet ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list known ruggers: %w", err)
	}
	defer rows.Close()

	var result []*domain.Rugger
	for rows.Next() {
		var r domain.Rugger
		if err := rows.Scan(&r.Wallet, &r.Note, &r.AddedAt); err != nil {
			return nil, fmt.Errorf("scan known rugger row: %w", err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known rugger rows: %w", err)
	}
	return result, nil
}
