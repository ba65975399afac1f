package model

import "fmt"

// Entry is one loosely typed record from a data source: an element of a
// rewards JSON document or an object extracted from the script bundle.
type Entry map[string]any

// Well-known entry fields.
const (
	FieldPeerID   = "peerId"
	FieldReward   = "reward"
	FieldCriteria = "criteria"
)

// PeerID returns the entry's peer id when it is a non-empty string.
func (e Entry) PeerID() (string, bool) {
	id, ok := e[FieldPeerID].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SourceKind tags a data source explicitly so the reconciler never relies on
// comparing the sources themselves.
type SourceKind int

// Source kinds. Each reward kind writes exactly one bucket.
const (
	SourceExisting SourceKind = iota
	SourceInterim
	SourcePreUpdate
	SourcePostUpdate
	SourceDisqualified
)

// RewardSources lists the reward kinds in processing order.
func RewardSources() []SourceKind {
	return []SourceKind{SourceExisting, SourceInterim, SourcePreUpdate, SourcePostUpdate}
}

// String returns the kind's configuration key.
func (k SourceKind) String() string {
	switch k {
	case SourceExisting:
		return "existing"
	case SourceInterim:
		return "interim"
	case SourcePreUpdate:
		return "pre_update"
	case SourcePostUpdate:
		return "post_update"
	case SourceDisqualified:
		return "disqualified"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}

// IsReward reports whether the kind carries reward amounts.
func (k SourceKind) IsReward() bool {
	return k >= SourceExisting && k <= SourcePostUpdate
}

// Bucket returns the bucket a reward kind writes. It panics for
// SourceDisqualified, which has none.
func (k SourceKind) Bucket() Bucket {
	switch k {
	case SourceExisting:
		return BucketExisting
	case SourceInterim:
		return BucketInterim
	case SourcePreUpdate:
		return BucketPreUpdate
	case SourcePostUpdate:
		return BucketPostUpdate
	default:
		panic(fmt.Sprintf("model: %s has no reward bucket", k))
	}
}

// ParseSourceKind maps a configuration key back to its kind.
func ParseSourceKind(s string) (SourceKind, error) {
	for _, k := range append(RewardSources(), SourceDisqualified) {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown source kind %q", s)
}
