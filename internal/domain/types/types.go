// Package types contains common types used across the application
package types

// Category is a peer's primary status. Every peer has exactly one.
type Category int

// Primary categories in precedence order: a peer takes the first that applies.
const (
	Banned Category = iota
	Active
	RecentlyInactive
	Inactive
)

// Categories returns the primary categories in precedence order.
func Categories() []Category {
	return []Category{Banned, Active, RecentlyInactive, Inactive}
}

func (c Category) String() string {
	switch c {
	case Banned:
		return "banned"
	case Active:
		return "active"
	case RecentlyInactive:
		return "recently_inactive"
	case Inactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// Summary aggregates classification over a set of peers.
type Summary struct {
	Total   int
	Members map[Category][]string
	// New lists peers tagged new; the tag is independent of the category.
	New []string
}

// Count returns the number of peers in c.
func (s Summary) Count(c Category) int {
	return len(s.Members[c])
}
