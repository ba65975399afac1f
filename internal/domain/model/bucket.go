// Package model contains domain models passed between layers.
package model

// Bucket names one reward accumulator on a PeerRecord.
type Bucket int

// Reward buckets in chronological order.
const (
	BucketExisting   Bucket = iota // rewards before 2024
	BucketInterim                  // January up to the May 12 update
	BucketPreUpdate                // May 12 up to release v1.4.18
	BucketPostUpdate               // after release v1.4.18

	bucketCount
)

// Buckets returns every bucket in chronological order.
func Buckets() []Bucket {
	return []Bucket{BucketExisting, BucketInterim, BucketPreUpdate, BucketPostUpdate}
}

// String returns the bucket's configuration key.
func (b Bucket) String() string {
	switch b {
	case BucketExisting:
		return "existing"
	case BucketInterim:
		return "interim"
	case BucketPreUpdate:
		return "pre_update"
	case BucketPostUpdate:
		return "post_update"
	default:
		return "unknown"
	}
}

// Label is the human readable period a bucket covers.
func (b Bucket) Label() string {
	switch b {
	case BucketExisting:
		return "Rewards before 2024 (Existing)"
	case BucketInterim:
		return "Rewards between January and May 12"
	case BucketPreUpdate:
		return "Rewards between May 12 and v1.4.18"
	case BucketPostUpdate:
		return "Rewards after v1.4.18 until today"
	default:
		return "Unknown rewards"
	}
}

// Legacy reports whether the bucket predates the current reward phase
// (the May 12 cutoff).
func (b Bucket) Legacy() bool {
	return b == BucketExisting || b == BucketInterim
}

func (b Bucket) valid() bool {
	return b >= 0 && b < bucketCount
}
