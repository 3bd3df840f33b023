package memory

import (
	"context"
	"sort"
	"sync"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecord // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.TradeRecord),
	}
}

// InsertOpen adds an open BUY record.
// Returns ErrDuplicateKey if trade_id exists or (run_id, token_id) is already open.
func (s *TradeStore) InsertOpen(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" || t.RunID == "" || t.TokenID == "" || !t.IsOpen() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.RunID == t.RunID && existing.TokenID == t.TokenID && existing.IsOpen() {
			return storage.ErrDuplicateKey
		}
	}

	s.data[t.TradeID] = cloneTrade(t)
	return nil
}

// Close turns the single open record of (runID, tokenID) into a SELL.
func (s *TradeStore) Close(_ context.Context, runID, tokenID string, c domain.TradeClose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *domain.TradeRecord
	for _, t := range s.data {
		if t.RunID != runID || t.TokenID != tokenID || !t.IsOpen() {
			continue
		}
		if match != nil {
			return storage.ErrAmbiguousOpenTrade
		}
		match = t
	}
	if match == nil {
		return storage.ErrNotFound
	}

	exitPrice, pnl, closedAt, reason := c.ExitPrice, c.RealizedPnL, c.ClosedAt, c.Reason
	match.Action = domain.TradeActionSell
	match.ExitPrice = &exitPrice
	match.RealizedPnL = &pnl
	match.ClosedAt = &closedAt
	match.ExitReason = &reason
	return nil
}

// GetByRun retrieves all trades of a run, ordered by opened_at ASC.
func (s *TradeStore) GetByRun(_ context.Context, runID string) ([]*domain.TradeRecord, error) {
	return s.filter(func(t *domain.TradeRecord) bool { return t.RunID == runID }), nil
}

// GetOpen retrieves the still-open trades of a run.
func (s *TradeStore) GetOpen(_ context.Context, runID string) ([]*domain.TradeRecord, error) {
	return s.filter(func(t *domain.TradeRecord) bool { return t.RunID == runID && t.IsOpen() }), nil
}

func (s *TradeStore) filter(keep func(*domain.TradeRecord) bool) []*domain.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if keep(t) {
			result = append(result, cloneTrade(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OpenedAt.Equal(result[j].OpenedAt) {
			return result[i].OpenedAt.Before(result[j].OpenedAt)
		}
		return result[i].TradeID < result[j].TradeID
	})

	return result
}

func cloneTrade(t *domain.TradeRecord) *domain.TradeRecord {
	copy := *t
	copy.ExitPrice = clonePtr(t.ExitPrice)
	copy.RealizedPnL = clonePtr(t.RealizedPnL)
	copy.ClosedAt = clonePtr(t.ClosedAt)
	copy.ExitReason = clonePtr(t.ExitReason)
	return &copy
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ storage.TradeStore = (*TradeStore)(nil)
