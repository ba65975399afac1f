package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/rewardscan/internal/domain/model"
)

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	rec, created := store.Ensure(ctx, "Qm1")
	if !created {
		t.Error("expected first Ensure to create the record")
	}
	if rec.PeerID() != "Qm1" || rec.Criteria != model.NotDisqualified || rec.TotalReward() != 0 {
		t.Errorf("unexpected default record: %+v", rec)
	}

	rec.SetBucket(model.BucketInterim, 4)
	again, created := store.Ensure(ctx, "Qm1")
	if created {
		t.Error("expected second Ensure to reuse the record")
	}
	if again != rec || again.TotalReward() != 4 {
		t.Errorf("expected the same mutated record, got %+v", again)
	}

	got, err := store.Get(ctx, "Qm1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != rec {
		t.Error("Get returned a different record")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)

	if _, err := store.Get(ctx, "QmX"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrEmptyPeerID) {
		t.Errorf("expected ErrEmptyPeerID, got %v", err)
	}
}

func TestMemoryStore_Order(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)

	for _, id := range []string{"c", "a", "b", "a"} {
		store.Ensure(ctx, id)
	}

	all := store.All(ctx)
	if len(all) != 3 || store.Count(ctx) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i, want := range []string{"c", "a", "b"} {
		if all[i].PeerID() != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].PeerID())
		}
	}

	all[0] = nil
	if store.All(ctx)[0] == nil {
		t.Error("All must return a copy of the ordering")
	}
}

var _ Store = (*MemoryStore)(nil)
