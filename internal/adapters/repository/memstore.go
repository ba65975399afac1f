package repository

import (
	"context"
	"fmt"

	"github.com/okian/rewardscan/internal/domain/model"
)

// MemoryStore is an in-memory Store that remembers insertion order so reports
// list peers deterministically. It is not safe for concurrent use; a run
// mutates it from a single reconciliation pass.
type MemoryStore struct {
	byID  map[string]*model.PeerRecord
	order []*model.PeerRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(_ context.Context) *MemoryStore {
	return &MemoryStore{byID: make(map[string]*model.PeerRecord)}
}

// Ensure implements Store.
func (s *MemoryStore) Ensure(_ context.Context, peerID string) (*model.PeerRecord, bool) {
	if rec, ok := s.byID[peerID]; ok {
		return rec, false
	}
	rec := model.NewPeerRecord(peerID)
	s.byID[peerID] = rec
	s.order = append(s.order, rec)
	return rec, true
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, peerID string) (*model.PeerRecord, error) {
	if peerID == "" {
		return nil, ErrEmptyPeerID
	}
	rec, ok := s.byID[peerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, peerID)
	}
	return rec, nil
}

// All implements Store. The slice is a copy; the records are shared.
func (s *MemoryStore) All(_ context.Context) []*model.PeerRecord {
	out := make([]*model.PeerRecord, len(s.order))
	copy(out, s.order)
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.order)
}
