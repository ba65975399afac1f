package extract

import "github.com/okian/rewardscan/internal/domain/model"

// mergeSet collects records keyed by peer id in first-seen order. A record
// seen again is shallow-merged: new fields win, missing ones are kept.
type mergeSet struct {
	index   map[string]int
	records []model.Entry
}

func newMergeSet() *mergeSet {
	return &mergeSet{index: make(map[string]int)}
}

// add merges rec under id and reports whether id was already present.
func (m *mergeSet) add(id string, rec model.Entry) bool {
	if i, ok := m.index[id]; ok {
		existing := m.records[i]
		for k, v := range rec {
			existing[k] = v
		}
		return true
	}

	cp := make(model.Entry, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	m.index[id] = len(m.records)
	m.records = append(m.records, cp)
	return false
}

func (m *mergeSet) len() int { return len(m.records) }
