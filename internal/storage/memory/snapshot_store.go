package memory

import (
	"context"
	"sort"
	"sync"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

type snapshotKey struct {
	runID      string
	tokenID    string
	observedAt int64
	phase      string
}

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[snapshotKey]*domain.ObservationSnapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[snapshotKey]*domain.ObservationSnapshot),
	}
}

// InsertBulk appends snapshots; a repeated key replaces the earlier row.
func (s *SnapshotStore) InsertBulk(_ context.Context, snaps []*domain.ObservationSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	for _, snap := range snaps {
		if snap == nil || snap.RunID == "" || snap.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		copy := *snap
		copy.Score = clonePtr(snap.Score)
		s.data[snapshotKey{snap.RunID, snap.TokenID, snap.ObservedAt, snap.Phase}] = &copy
	}
	return nil
}

// GetByToken retrieves a token's snapshots within a run, ordered by observed_at ASC.
func (s *SnapshotStore) GetByToken(_ context.Context, runID, tokenID string) ([]*domain.ObservationSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ObservationSnapshot
	for k, snap := range s.data {
		if k.runID == runID && k.tokenID == tokenID {
			copy := *snap
			copy.Score = clonePtr(snap.Score)
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ObservedAt != result[j].ObservedAt {
			return result[i].ObservedAt < result[j].ObservedAt
		}
		return result[i].Phase > result[j].Phase // ingest before exit_check
	})
	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
