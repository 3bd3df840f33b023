package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, run_id, token_id, action,
	entry_price, quantity, usd_invested, opened_at, score,
	exit_price, realized_pnl, closed_at, exit_reason
`

// InsertOpen adds an open BUY record.
// Returns ErrDuplicateKey if trade_id exists or the token is already open in the run.
func (s *TradeStore) InsertOpen(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" || t.RunID == "" || t.TokenID == "" || !t.IsOpen() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			trade_id, run_id, token_id, action,
			entry_price, quantity, usd_invested, opened_at, score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.RunID, t.TokenID, t.Action,
		t.EntryPrice, t.Quantity, t.USDInvested, t.OpenedAt, t.Score,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// Close turns the single open record of (runID, tokenID) into a SELL.
// The open rows are locked first so the match count and the update agree.
func (s *TradeStore) Close(ctx context.Context, runID, tokenID string, c domain.TradeClose) error {
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT trade_id FROM trades
			WHERE run_id = $1 AND token_id = $2 AND exit_price IS NULL
			FOR UPDATE
		`, runID, tokenID)
		if err != nil {
			return fmt.Errorf("select open trade: %w", err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("collect open trades: %w", err)
		}

		switch len(ids) {
		case 0:
			return storage.ErrNotFound
		case 1:
		default:
			return storage.ErrAmbiguousOpenTrade
		}

		_, err = tx.Exec(ctx, `
			UPDATE trades
			SET action = $2, exit_price = $3, realized_pnl = $4, closed_at = $5, exit_reason = $6
			WHERE trade_id = $1
		`, ids[0], domain.TradeActionSell, c.ExitPrice, c.RealizedPnL, c.ClosedAt, c.Reason)
		if err != nil {
			return fmt.Errorf("close trade record: %w", err)
		}
		return nil
	})
}

// GetByRun retrieves all trades of a run, ordered by opened_at ASC.
func (s *TradeStore) GetByRun(ctx context.Context, runID string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE run_id = $1
		ORDER BY opened_at ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by run: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetOpen retrieves the still-open trades of a run.
func (s *TradeStore) GetOpen(ctx context.Context, runID string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE run_id = $1 AND exit_price IS NULL
		ORDER BY opened_at ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get open trade records: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// scanTradeRecords scans multiple rows into a slice of TradeRecord.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		var t domain.TradeRecord

		err := rows.Scan(
			&t.TradeID, &t.RunID, &t.TokenID, &t.Action,
			&t.EntryPrice, &t.Quantity, &t.USDInvested, &t.OpenedAt, &t.Score,
			&t.ExitPrice, &t.RealizedPnL, &t.ClosedAt, &t.ExitReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}

	return trades, nil
}
