package reconcile

import (
	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/pkg/logger"
)

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used to announce each source.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStore makes Reconcile write into store instead of a fresh MemoryStore.
func WithStore(store repository.Store) Option {
	return func(r *Reconciler) {
		r.store = store
	}
}

// WithRewardField sets the entry field holding reward amounts.
func WithRewardField(field string) Option {
	return func(r *Reconciler) {
		if field != "" {
			r.rewardField = field
		}
	}
}

// WithCriteriaField sets the entry field holding disqualification reasons.
func WithCriteriaField(field string) Option {
	return func(r *Reconciler) {
		if field != "" {
			r.criteriaField = field
		}
	}
}
