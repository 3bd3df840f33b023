package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"sol-memebot/internal/domain"
	"sol-memebot/internal/storage"
)

func TestObservationStore_UpsertIsIdempotent(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()
	first := time.Unix(1000, 0)

	obs := &domain.TokenObservation{ID: "mintA", MarketCapUSD: 100000, HolderCount: 250}
	if err := store.Upsert(ctx, obs, 88, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	changed := *obs
	changed.MarketCapUSD = 1
	if err := store.Upsert(ctx, &changed, 10, first.Add(time.Hour)); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "mintA")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Score != 88 || got.Observation.MarketCapUSD != 100000 || !got.FirstSeenAt.Equal(first) {
		t.Errorf("conflicting upsert changed state: %+v", got)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestObservationStore_Errors(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.TokenObservation{}, 0, time.Now()); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunStore(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty store, got %v", err)
	}

	older := &domain.RunRecord{RunID: "r1", FinishedAt: time.Unix(100, 0), FinalSOL: 9}
	newer := &domain.RunRecord{RunID: "r2", FinishedAt: time.Unix(200, 0), FinalSOL: 11}
	for _, r := range []*domain.RunRecord{newer, older} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if err := store.Insert(ctx, older); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.RunID != "r2" {
		t.Errorf("Latest = %s, want r2", latest.RunID)
	}

	got, err := store.GetByID(ctx, "r1")
	if err != nil || got.FinalSOL != 9 {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
}

func TestRuggerStore(t *testing.T) {
	store := NewRuggerStore("seeded")
	ctx := context.Background()

	known, _ := store.IsKnown(ctx, "seeded")
	if !known {
		t.Error("seeded wallet should be known")
	}

	if err := store.Add(ctx, &domain.Rugger{Wallet: "w2", Note: "first"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(ctx, &domain.Rugger{Wallet: "w2", Note: "updated"}); err != nil {
		t.Fatalf("re-Add failed: %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 2 || list[0].Wallet != "seeded" || list[1].Note != "updated" {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := store.Remove(ctx, "w2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove(ctx, "w2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if known, _ := store.IsKnown(ctx, "w2"); known {
		t.Error("removed wallet still known")
	}
}

func TestSnapshotStore(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()
	score := 70.0

	snaps := []*domain.ObservationSnapshot{
		{RunID: "r1", TokenID: "mintA", ObservedAt: 2000, Phase: domain.SnapshotPhaseExitCheck, MarketCapUSD: 2},
		{RunID: "r1", TokenID: "mintA", ObservedAt: 1000, Phase: domain.SnapshotPhaseIngest, MarketCapUSD: 1, Score: &score},
		{RunID: "r1", TokenID: "mintA", ObservedAt: 1000, Phase: domain.SnapshotPhaseExitCheck, MarketCapUSD: 1.5},
		{RunID: "r1", TokenID: "mintB", ObservedAt: 1000, Phase: domain.SnapshotPhaseIngest},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, snaps[:1]); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}

	got, _ := store.GetByToken(ctx, "r1", "mintA")
	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(got))
	}
	if got[0].Phase != domain.SnapshotPhaseIngest || got[1].MarketCapUSD != 1.5 || got[2].ObservedAt != 2000 {
		t.Errorf("unexpected order: %+v %+v %+v", got[0], got[1], got[2])
	}
	if got[0].Score == nil || *got[0].Score != 70 {
		t.Errorf("score not kept: %+v", got[0])
	}

	err := store.InsertBulk(ctx, []*domain.ObservationSnapshot{{TokenID: "x"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
