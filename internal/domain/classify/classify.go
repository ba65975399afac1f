// Package classify assigns each reconciled peer an activity category and
// the independent "new" tag.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/internal/domain/types"
	"github.com/okian/rewardscan/pkg/metrics"
)

// Strategy selects how activity is derived from a peer record.
type Strategy string

// Supported strategies.
const (
	// StrategyPhase reads activity from the reward phase buckets.
	StrategyPhase Strategy = "phase"
	// StrategyPresence reads activity from monthly presence flags.
	StrategyPresence Strategy = "presence"
)

// ParseStrategy returns the strategy named s, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyPhase, StrategyPresence:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Classifier derives a peer's category and new tag.
type Classifier interface {
	// Classify returns the single primary category of rec.
	Classify(rec *model.PeerRecord) types.Category
	// IsNew reports whether rec first earned rewards in the current period.
	IsNew(rec *model.PeerRecord) bool
}

// New returns the classifier for strategy. The reference time picks the
// current month for the presence strategy and is ignored by the phase one.
func New(strategy Strategy, reference time.Time) (Classifier, error) {
	switch strategy {
	case StrategyPhase, "":
		return phaseClassifier{}, nil
	case StrategyPresence:
		return presenceClassifier{
			current:  model.MonthOf(reference),
			previous: PreviousMonth(reference),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}
}

// PreviousMonth returns the month key of the month before t's month.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return model.MonthOf(first.AddDate(0, 0, -1))
}

type phaseClassifier struct{}

func (phaseClassifier) Classify(rec *model.PeerRecord) types.Category {
	switch {
	case rec.Disqualified():
		return types.Banned
	case rec.Bucket(model.BucketPostUpdate) > 0:
		return types.Active
	case rec.Bucket(model.BucketPreUpdate) > 0:
		return types.RecentlyInactive
	default:
		return types.Inactive
	}
}

func (phaseClassifier) IsNew(rec *model.PeerRecord) bool {
	if rec.Disqualified() {
		return false
	}
	return rec.CurrentReward() > 0 &&
		rec.Bucket(model.BucketExisting) == 0 &&
		rec.Bucket(model.BucketInterim) == 0
}

type presenceClassifier struct {
	current  string
	previous string
}

func (c presenceClassifier) Classify(rec *model.PeerRecord) types.Category {
	switch {
	case rec.Disqualified():
		return types.Banned
	case rec.Present(c.current):
		return types.Active
	case rec.Present(c.previous):
		return types.RecentlyInactive
	default:
		return types.Inactive
	}
}

func (c presenceClassifier) IsNew(rec *model.PeerRecord) bool {
	if rec.Disqualified() || !rec.Present(c.current) || rec.Bucket(model.BucketExisting) != 0 {
		return false
	}
	for _, m := range rec.Months() {
		if m != c.current && rec.Present(m) {
			return false
		}
	}
	return true
}

// Summarize classifies every record and groups peer ids per category, in
// the order of records. Category gauges are updated as a side effect.
func Summarize(records []*model.PeerRecord, c Classifier) types.Summary {
	s := types.Summary{
		Total:   len(records),
		Members: make(map[types.Category][]string, len(types.Categories())),
	}
	for _, rec := range records {
		cat := c.Classify(rec)
		s.Members[cat] = append(s.Members[cat], rec.PeerID())
		if c.IsNew(rec) {
			s.New = append(s.New, rec.PeerID())
		}
	}

	for _, cat := range types.Categories() {
		metrics.UpdateCategoryCount(cat.String(), s.Count(cat))
	}
	metrics.UpdateNewPeers(len(s.New))
	return s
}
