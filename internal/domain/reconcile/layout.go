package reconcile

import (
	"fmt"

	"github.com/okian/rewardscan/internal/domain/model"
)

// Layout says which field of an extracted script record feeds which source.
type Layout struct {
	Fields        map[model.SourceKind]string
	CriteriaField string
}

// DefaultLayout matches the field names used by the rewards bundle.
func DefaultLayout() Layout {
	return Layout{
		Fields: map[model.SourceKind]string{
			model.SourceExisting:   "existingReward",
			model.SourceInterim:    "reward",
			model.SourcePreUpdate:  "preUpdateReward",
			model.SourcePostUpdate: "postUpdateReward",
		},
		CriteriaField: model.FieldCriteria,
	}
}

// NewLayout overrides the default layout with fields keyed by source kind
// name ("existing", "interim", "pre_update", "post_update").
func NewLayout(fields map[string]string, criteriaField string) (Layout, error) {
	l := DefaultLayout()
	for name, field := range fields {
		kind, err := model.ParseSourceKind(name)
		if err != nil || !kind.IsReward() {
			return Layout{}, fmt.Errorf("%w: %q is not a reward source", ErrInvalidLayout, name)
		}
		if field == "" {
			return Layout{}, fmt.Errorf("%w: empty field for %s", ErrInvalidLayout, name)
		}
		l.Fields[kind] = field
	}
	if criteriaField != "" {
		l.CriteriaField = criteriaField
	}
	return l, nil
}

// SourcesFromRecords splits merged script records into tagged sources.
//
// A record joins every reward source whose field it carries, with that
// field renamed to the standard reward field. Records carrying none still
// join the first reward source with no amount so the peer exists. Presence
// fields travel with every emitted entry. Records with a non-empty criteria
// field also form the disqualification source.
func SourcesFromRecords(records []model.Entry, layout Layout) []Source {
	kinds := model.RewardSources()
	sources := make([]Source, 0, len(kinds)+1)
	byKind := make(map[model.SourceKind]int, len(kinds))
	for _, k := range kinds {
		byKind[k] = len(sources)
		sources = append(sources, Source{Kind: k})
	}
	disq := Source{Kind: model.SourceDisqualified}

	for _, rec := range records {
		id, ok := rec.PeerID()
		if !ok {
			continue
		}

		placed := false
		for _, k := range kinds {
			field, ok := layout.Fields[k]
			if !ok {
				continue
			}
			v, has := rec[field]
			if !has {
				continue
			}
			e := entryFor(id, rec)
			e[model.FieldReward] = v
			sources[byKind[k]].Entries = append(sources[byKind[k]].Entries, e)
			placed = true
		}
		if !placed {
			sources[0].Entries = append(sources[0].Entries, entryFor(id, rec))
		}

		if c := criteria(rec, layout.CriteriaField); c != model.NotDisqualified {
			disq.Entries = append(disq.Entries, model.Entry{
				model.FieldPeerID:   id,
				model.FieldCriteria: c,
			})
		}
	}

	return append(sources, disq)
}

func entryFor(id string, rec model.Entry) model.Entry {
	e := model.Entry{model.FieldPeerID: id}
	for field, v := range rec {
		if _, ok := PresenceMonth(field); ok {
			e[field] = v
		}
	}
	return e
}
