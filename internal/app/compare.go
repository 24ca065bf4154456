package app

import (
	"slices"

	"github.com/raceday/pitstop/internal/domain"
)

// ValueDiff is one member whose value changed between two schedules.
type ValueDiff struct {
	Old int64 `json:"old"`
	New int64 `json:"new"`
}

// CategoryDiff holds the member-level differences within one category.
type CategoryDiff struct {
	Changed map[string]ValueDiff `json:"changed,omitempty"`
	Added   map[string]int64     `json:"added,omitempty"`
	Removed map[string]int64     `json:"removed,omitempty"`
}

// Empty reports whether the category has no differences.
func (d CategoryDiff) Empty() bool {
	return len(d.Changed) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}

// Comparison is the full difference report between two resolved schedules.
type Comparison struct {
	LeftFork    string                  `json:"left_fork"`
	RightFork   string                  `json:"right_fork"`
	EIPsChanged bool                    `json:"eips_changed"`
	LeftEIPs    []string                `json:"left_eips,omitempty"`
	RightEIPs   []string                `json:"right_eips,omitempty"`
	Categories  map[string]CategoryDiff `json:"categories"`
}

// HasDifferences reports whether anything at all differs.
func (c Comparison) HasDifferences() bool {
	if c.LeftFork != c.RightFork || c.EIPsChanged {
		return true
	}
	for _, diff := range c.Categories {
		if !diff.Empty() {
			return true
		}
	}
	return false
}

// CategoryNames returns the compared category names sorted.
func (c Comparison) CategoryNames() []string {
	return sortedKeys(c.Categories)
}

// Compare diffs two resolved schedules category by category. It is a pure
// function over two value objects; both schedules keep their full provenance
// untouched.
func Compare(left, right domain.ResolvedSchedule) Comparison {
	comparison := Comparison{
		LeftFork:   left.Fork,
		RightFork:  right.Fork,
		Categories: make(map[string]CategoryDiff),
	}
	if !slices.Equal(left.EIPs, right.EIPs) {
		comparison.EIPsChanged = true
		comparison.LeftEIPs = left.EIPs
		comparison.RightEIPs = right.EIPs
	}

	names := make(map[string]struct{}, len(left.Categories)+len(right.Categories))
	for name := range left.Categories {
		names[name] = struct{}{}
	}
	for name := range right.Categories {
		names[name] = struct{}{}
	}
	for name := range names {
		comparison.Categories[name] = diffMembers(left.Categories[name], right.Categories[name])
	}
	return comparison
}

// diffMembers compares two member tables, either of which may be nil.
func diffMembers(left, right map[string]int64) CategoryDiff {
	diff := CategoryDiff{
		Changed: make(map[string]ValueDiff),
		Added:   make(map[string]int64),
		Removed: make(map[string]int64),
	}
	for member, oldValue := range left {
		newValue, ok := right[member]
		switch {
		case !ok:
			diff.Removed[member] = oldValue
		case oldValue != newValue:
			diff.Changed[member] = ValueDiff{Old: oldValue, New: newValue}
		}
	}
	for member, newValue := range right {
		if _, ok := left[member]; !ok {
			diff.Added[member] = newValue
		}
	}
	return diff
}
