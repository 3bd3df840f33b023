package postgres

import (
	"context"
	"fmt"
	"time"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// Upsert inserts the observation; ON CONFLICT DO NOTHING keeps the first write.
func (s *ObservationStore) Upsert(ctx context.Context, obs *domain.TokenObservation, score float64, seenAt time.Time) error {
	if obs == nil || obs.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_observations (
			token_id, category, market_cap_usd, dev_hold_pct, liquidity_usd, holder_count,
			upgradeable, freeze_authority, momentum, graduation, base_price,
			dev_wallet_address, is_dev_known_rugger, raydium_lp_detected,
			score, first_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (token_id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		obs.ID, obs.Category, obs.MarketCapUSD, obs.DevHoldPct, obs.LiquidityUSD, obs.HolderCount,
		obs.Upgradeable, obs.FreezeAuthority, obs.Momentum, obs.Graduation, obs.BasePrice,
		obs.DevWalletAddress, obs.IsDevKnownRugger, obs.RaydiumLPDetected,
		score, seenAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token observation: %w", err)
	}
	return nil
}

// GetByID retrieves an observation by token id. Returns ErrNotFound if not exists.
func (s *ObservationStore) GetByID(ctx context.Context, tokenID string) (*domain.ObservationRecord, error) {
	query := `
		SELECT
			token_id, category, market_cap_usd, dev_hold_pct, liquidity_usd, holder_count,
			upgradeable, freeze_authority, momentum, graduation, base_price,
			dev_wallet_address, is_dev_known_rugger, raydium_lp_detected,
			score, first_seen_at
		FROM token_observations
		WHERE token_id = $1
	`

	var rec domain.ObservationRecord
	o := &rec.Observation
	err := s.pool.QueryRow(ctx, query, tokenID).Scan(
		&o.ID, &o.Category, &o.MarketCapUSD, &o.DevHoldPct, &o.LiquidityUSD, &o.HolderCount,
		&o.Upgradeable, &o.FreezeAuthority, &o.Momentum, &o.Graduation, &o.BasePrice,
		&o.DevWalletAddress, &o.IsDevKnownRugger, &o.RaydiumLPDetected,
		&rec.Score, &rec.FirstSeenAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token observation: %w", err)
	}
	return &rec, nil
}
