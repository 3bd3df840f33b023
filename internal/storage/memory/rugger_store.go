package memory

import (
	"context"
	"sort"
	"sync"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// RuggerStore is an in-memory implementation of storage.RuggerStore.
type RuggerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Rugger // keyed by wallet
}

// NewRuggerStore creates a new in-memory rugger registry.
func NewRuggerStore(wallets ...string) *RuggerStore {
	s := &RuggerStore{
		data: make(map[string]*domain.Rugger),
	}
	for _, w := range wallets {
		s.data[w] = &domain.Rugger{Wallet: w}
	}
	return s
}

// IsKnown reports whether the wallet is flagged.
func (s *RuggerStore) IsKnown(_ context.Context, wallet string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[wallet]
	return ok, nil
}

// Add flags a wallet, replacing the note of an existing entry.
func (s *RuggerStore) Add(_ context.Context, r *domain.Rugger) error {
	if r == nil || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[r.Wallet]; ok {
		existing.Note = r.Note
		return nil
	}
	copy := *r
	s.data[r.Wallet] = &copy
	return nil
}

// Remove unflags a wallet. Returns ErrNotFound if not flagged.
func (s *RuggerStore) Remove(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[wallet]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, wallet)
	return nil
}

// List retrieves all flagged wallets ordered by wallet.
func (s *RuggerStore) List(_ context.Context) ([]*domain.Rugger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Rugger, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet < result[j].Wallet
	})
	return result, nil
}

var _ storage.RuggerStore = (*RuggerStore)(nil)
