package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// NotDisqualified is the criteria sentinel for peers absent from the
// disqualification list.
const NotDisqualified = "N/A"

// PeerRecord is the unified reward record of a single peer.
//
// The total is kept equal to the sum of the buckets: it is only ever
// recomputed by SetBucket and never written on its own.
type PeerRecord struct {
	peerID  string
	buckets [bucketCount]float64
	total   float64

	// Criteria holds the disqualification reason or NotDisqualified.
	Criteria string

	presence map[string]bool
}

// NewPeerRecord returns a zero-valued, not disqualified record.
func NewPeerRecord(peerID string) *PeerRecord {
	return &PeerRecord{
		peerID:   peerID,
		Criteria: NotDisqualified,
		presence: make(map[string]bool),
	}
}

// PeerID returns the record's immutable identifier.
func (r *PeerRecord) PeerID() string { return r.peerID }

// Bucket returns the value of b.
func (r *PeerRecord) Bucket(b Bucket) float64 {
	if !b.valid() {
		return 0
	}
	return r.buckets[b]
}

// SetBucket writes v into b and recomputes the total.
func (r *PeerRecord) SetBucket(b Bucket, v float64) {
	if !b.valid() {
		panic(fmt.Sprintf("model: invalid bucket %d", int(b)))
	}
	r.buckets[b] = v

	var total float64
	for _, x := range r.buckets {
		total += x
	}
	r.total = total
}

// TotalReward returns the sum of all buckets.
func (r *PeerRecord) TotalReward() float64 { return r.total }

// LegacyReward sums the buckets before the May 12 cutoff.
func (r *PeerRecord) LegacyReward() float64 {
	return r.buckets[BucketExisting] + r.buckets[BucketInterim]
}

// CurrentReward sums the buckets after the May 12 cutoff.
func (r *PeerRecord) CurrentReward() float64 {
	return r.buckets[BucketPreUpdate] + r.buckets[BucketPostUpdate]
}

// Disqualified reports whether the peer carries a disqualification reason.
func (r *PeerRecord) Disqualified() bool {
	return r.Criteria != NotDisqualified
}

// SetPresence records the presence flag for month. The month is normalized
// with MonthKey, so "January", "jan" and "JAN" share a flag.
func (r *PeerRecord) SetPresence(month string, present bool) {
	r.presence[MonthKey(month)] = present
}

// Present reports the presence flag for month; unknown months are false.
func (r *PeerRecord) Present(month string) bool {
	return r.presence[MonthKey(month)]
}

// Months returns the months with a recorded flag, in calendar order.
// Keys that are not month names sort last, alphabetically.
func (r *PeerRecord) Months() []string {
	out := make([]string, 0, len(r.presence))
	for m := range r.presence {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := monthOrder(out[i]), monthOrder(out[j])
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}

// MonthKey normalizes a month name to its lowercase three letter
// abbreviation. Strings that do not name a month are only lowercased.
func MonthKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 && monthOrder(s[:3]) <= 12 && strings.HasPrefix(fullMonth(s[:3]), s) {
		return s[:3]
	}
	return s
}

// MonthOf returns the month key of t.
func MonthOf(t time.Time) string {
	return strings.ToLower(t.Month().String()[:3])
}

func monthOrder(key string) int {
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == key {
			return int(m)
		}
	}
	return 13
}

func fullMonth(key string) string {
	return strings.ToLower(time.Month(monthOrder(key)).String())
}
