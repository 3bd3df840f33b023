package memory

import (
	"context"
	"sync"
	"time"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ObservationRecord // keyed by token id
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]*domain.ObservationRecord),
	}
}

// Upsert stores the observation; an existing token id is left untouched.
func (s *ObservationStore) Upsert(_ context.Context, obs *domain.TokenObservation, score float64, seenAt time.Time) error {
	if obs == nil || obs.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[obs.ID]; exists {
		return nil
	}

	rec := &domain.ObservationRecord{
		Observation: *obs,
		Score:       score,
		FirstSeenAt: seenAt,
	}
	rec.Observation.DevWalletAddress = clonePtr(obs.DevWalletAddress)
	s.data[obs.ID] = rec
	return nil
}

// GetByID retrieves an observation by token id. Returns ErrNotFound if not exists.
func (s *ObservationStore) GetByID(_ context.Context, tokenID string) (*domain.ObservationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *rec
	copy.Observation.DevWalletAddress = clonePtr(rec.Observation.DevWalletAddress)
	return &copy, nil
}

// Len returns the number of stored observations.
func (s *ObservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
