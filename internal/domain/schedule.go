package domain

import (
	"slices"
)

// CategoryOperations and the other well-known category names cover the
// sections every authored schedule uses today. The category table is open:
// a change may introduce any new category name and it flows through
// resolution, diffing, and rendering unchanged.
const (
	CategoryOperations  = "operations"
	CategoryStorage     = "storage"
	CategoryPrecompiles = "precompiles"
	CategoryCalldata    = "calldata"
	CategoryTransaction = "transaction"
	CategoryMemory      = "memory"
)

// WellKnownCategories returns the documented category names in their
// conventional rendering order.
func WellKnownCategories() []string {
	return []string{
		CategoryOperations,
		CategoryStorage,
		CategoryPrecompiles,
		CategoryCalldata,
		CategoryTransaction,
		CategoryMemory,
	}
}

// ResolvedSchedule is the flattened, final value table for one fork after
// applying its full ancestry in chain order. It is a value object: produced
// once per resolution, never mutated afterwards.
type ResolvedSchedule struct {
	Fork       string                      `json:"fork"`
	Ancestry   []string                    `json:"ancestry"` // fork chain, root first
	EIPs       []string                    `json:"eips"`     // change ids in applied order
	Constants  map[string]int64            `json:"constants"`
	Categories map[string]map[string]int64 `json:"categories"`
	Trace      Trace                       `json:"trace,omitempty"`
}

// Since reports whether forkID is this schedule's own fork or one of its
// ancestors. It answers membership only over the validated chain; an id
// outside the universe is simply not a member, which is what guarded
// template conditions need.
func (s ResolvedSchedule) Since(forkID string) bool {
	return slices.Contains(s.Ancestry, forkID)
}

// Category returns the member table for one category, failing loudly when
// the category is absent. The engine never invents defaults.
func (s ResolvedSchedule) Category(name string) (map[string]int64, error) {
	members, ok := s.Categories[name]
	if !ok {
		return nil, &CategoryNotFoundError{Fork: s.Fork, Category: name}
	}
	return members, nil
}

// Value returns one resolved value, failing loudly when the category or
// member is absent.
func (s ResolvedSchedule) Value(category, member string) (int64, error) {
	members, err := s.Category(category)
	if err != nil {
		return 0, err
	}
	value, ok := members[member]
	if !ok {
		return 0, &MemberNotFoundError{Fork: s.Fork, Category: category, Member: member}
	}
	return value, nil
}

// CategoryNames returns the schedule's category names sorted for
// deterministic iteration.
func (s ResolvedSchedule) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MemberNames returns the sorted member names of one category, or nil when
// the category is absent.
func (s ResolvedSchedule) MemberNames(category string) []string {
	members, ok := s.Categories[category]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
