// Package extract recovers peer records embedded as object literals in a
// minified script bundle.
package extract

import (
	"context"

	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/pkg/logger"
	"github.com/okian/rewardscan/pkg/metrics"
)

// Result is the outcome of one extraction pass.
type Result struct {
	// Records holds one entry per peer id, in first-seen order.
	Records []model.Entry
	// Candidates counts brace-balanced substrings that mention the token.
	Candidates int
	// Dropped counts candidates that failed to parse or had no peer id.
	Dropped int
}

// Extractor scans script text for embedded peer records.
type Extractor struct {
	logger logger.Logger
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract finds, repairs, parses and merges every peer record in script.
// A candidate that cannot be parsed is dropped without affecting the rest.
func (e *Extractor) Extract(ctx context.Context, script string) Result {
	var res Result
	set := newMergeSet()

	for _, frag := range Candidates(script) {
		res.Candidates++

		rec, id, err := decode(frag)
		if err != nil {
			res.Dropped++
			metrics.RecordCandidate(false)
			e.logger.Debug(ctx, "dropping candidate",
				logger.Int("length", len(frag)),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordCandidate(true)

		if set.add(id, rec) {
			e.logger.Debug(ctx, "merged fragment", logger.String("peerId", id))
		}
	}

	res.Records = set.records
	metrics.RecordRecordsExtracted(set.len())
	e.logger.Info(ctx, "extracted embedded peer records",
		logger.Int("candidates", res.Candidates),
		logger.Int("dropped", res.Dropped),
		logger.Int("records", set.len()),
	)
	return res
}

// decode parses one candidate into an entry and returns its peer id.
func decode(frag string) (model.Entry, string, error) {
	v, err := Parse(frag)
	if err != nil {
		return nil, "", err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, "", ErrMalformedFragment
	}

	rec := model.Entry(obj)
	id, ok := rec.PeerID()
	if !ok {
		return nil, "", ErrMalformedFragment
	}

	out := Numify(obj).(map[string]any)
	// The id is a key, not a quantity, even when it happens to be all digits.
	out[model.FieldPeerID] = id
	return model.Entry(out), id, nil
}
