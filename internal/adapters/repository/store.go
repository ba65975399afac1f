// Package repository defines the peer record store interface and errors.
package repository

import (
	"context"

	"github.com/okian/rewardscan/internal/domain/model"
)

// Store maps peer ids to their unified records for the lifetime of a run.
type Store interface {
	// Ensure returns the record for peerID, creating a zero-valued one when
	// the id has not been seen. created reports whether it was new.
	Ensure(ctx context.Context, peerID string) (rec *model.PeerRecord, created bool)

	// Get returns the record for peerID.
	// Returns ErrNotFound if the peer is unknown.
	Get(ctx context.Context, peerID string) (*model.PeerRecord, error)

	// All returns every record in first-seen order.
	All(ctx context.Context) []*model.PeerRecord

	// Count returns the number of peers tracked.
	Count(ctx context.Context) int
}
