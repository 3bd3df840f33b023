package clickhouse

import (
	"context"
	"fmt"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
// The table is a ReplacingMergeTree keyed by (run_id, token_id, observed_at_ms, phase),
// so re-inserted snapshots collapse; reads use FINAL.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk appends snapshots in one batch.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snaps []*domain.ObservationSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	for _, snap := range snaps {
		if snap == nil || snap.RunID == "" || snap.TokenID == "" || snap.ObservedAt < 0 {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO observation_snapshots (
			run_id, token_id, observed_at_ms, phase,
			market_cap_usd, liquidity_usd, holder_count, dev_hold_pct,
			raydium_lp_detected, score
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.RunID, snap.TokenID, uint64(snap.ObservedAt), snap.Phase,
			snap.MarketCapUSD, snap.LiquidityUSD, uint32(max(snap.HolderCount, 0)), snap.DevHoldPct,
			boolToUInt8(snap.RaydiumLPDetected), snap.Score,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByToken retrieves a token's snapshots within a run, ordered by observed_at ASC.
func (s *SnapshotStore) GetByToken(ctx context.Context, runID, tokenID string) ([]*domain.ObservationSnapshot, error) {
	query := `
		SELECT run_id, token_id, observed_at_ms, phase,
			market_cap_usd, liquidity_usd, holder_count, dev_hold_pct,
			raydium_lp_detected, score
		FROM observation_snapshots FINAL
		WHERE run_id = ? AND token_id = ?
		ORDER BY observed_at_ms ASC, phase DESC
	`

	rows, err := s.conn.Query(ctx, query, runID, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by token: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanSnapshots(rows chRows) ([]*domain.ObservationSnapshot, error) {
	var snaps []*domain.ObservationSnapshot

	for rows.Next() {
		var (
			snap       domain.ObservationSnapshot
			observedAt uint64
			holders    uint32
			raydium    uint8
		)
		err := rows.Scan(
			&snap.RunID, &snap.TokenID, &observedAt, &snap.Phase,
			&snap.MarketCapUSD, &snap.LiquidityUSD, &holders, &snap.DevHoldPct,
			&raydium, &snap.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.ObservedAt = int64(observedAt)
		snap.HolderCount = int(holders)
		snap.RaydiumLPDetected = raydium == 1
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
