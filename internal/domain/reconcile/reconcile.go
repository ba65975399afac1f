// Package reconcile merges independently sourced partial peer data into
// unified peer records.
package reconcile

import (
	"context"
	"fmt"

	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/pkg/logger"
	"github.com/okian/rewardscan/pkg/metrics"
)

// Source is one data source tagged with its kind.
type Source struct {
	Kind    model.SourceKind
	Entries []model.Entry
}

// Reconciler builds the peer record mapping from tagged sources.
type Reconciler struct {
	logger        logger.Logger
	store         repository.Store
	rewardField   string
	criteriaField string
}

// New creates a Reconciler reading the standard reward and criteria fields.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		logger:        logger.Nop(),
		rewardField:   model.FieldReward,
		criteriaField: model.FieldCriteria,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies every reward source in order, then every
// disqualification source, and returns the resulting store.
//
// Each reward source writes only its own bucket, so the result does not
// depend on the order of the reward sources. A present but malformed value
// aborts with an error wrapping ErrDataFormat.
func (r *Reconciler) Reconcile(ctx context.Context, sources []Source) (repository.Store, error) {
	store := r.store
	if store == nil {
		store = repository.NewMemoryStore(ctx)
	}

	for _, src := range sources {
		switch {
		case src.Kind.IsReward():
			if err := r.applyRewards(ctx, store, src); err != nil {
				return nil, err
			}
		case src.Kind == model.SourceDisqualified:
			// applied below, once every reward source is in
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, src.Kind)
		}
	}

	for _, src := range sources {
		if src.Kind != model.SourceDisqualified {
			continue
		}
		if err := r.applyCriteria(ctx, store, src); err != nil {
			return nil, err
		}
	}

	metrics.UpdatePeerCount(store.Count(ctx))
	return store, nil
}

func (r *Reconciler) applyRewards(ctx context.Context, store repository.Store, src Source) error {
	r.logger.Info(ctx, "processing source",
		logger.String("source", src.Kind.String()),
		logger.Int("entries", len(src.Entries)),
	)
	metrics.RecordSourceEntries(src.Kind.String(), len(src.Entries))

	bucket := src.Kind.Bucket()
	for i, e := range src.Entries {
		id, ok := e.PeerID()
		if !ok {
			return fmt.Errorf("%w: %s entry %d has no peer id", ErrDataFormat, src.Kind, i)
		}

		amount, err := Amount(e, r.rewardField)
		if err != nil {
			return fmt.Errorf("peer %s in %s: %w", id, src.Kind, err)
		}

		rec, _ := store.Ensure(ctx, id)
		rec.SetBucket(bucket, amount)

		for field, v := range e {
			month, ok := PresenceMonth(field)
			if !ok {
				continue
			}
			present, set, err := Flag(v)
			if err != nil {
				return fmt.Errorf("peer %s in %s field %s: %w", id, src.Kind, field, err)
			}
			if set {
				rec.SetPresence(month, present)
			}
		}
	}
	return nil
}

func (r *Reconciler) applyCriteria(ctx context.Context, store repository.Store, src Source) error {
	r.logger.Info(ctx, "processing source",
		logger.String("source", src.Kind.String()),
		logger.Int("entries", len(src.Entries)),
	)
	metrics.RecordSourceEntries(src.Kind.String(), len(src.Entries))

	for i, e := range src.Entries {
		id, ok := e.PeerID()
		if !ok {
			return fmt.Errorf("%w: %s entry %d has no peer id", ErrDataFormat, src.Kind, i)
		}
		rec, created := store.Ensure(ctx, id)
		if created {
			r.logger.Debug(ctx, "disqualified peer has no rewards", logger.String("peerId", id))
		}
		rec.Criteria = criteria(e, r.criteriaField)
	}
	return nil
}
