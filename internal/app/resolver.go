package app

import (
	"maps"
	"slices"

	"github.com/raceday/pitstop/internal/domain"
)

// Resolve flattens one fork's full ancestry into a ResolvedSchedule. It is
// all-or-nothing: the first structural error aborts resolution and no partial
// schedule is ever returned. Error precedence follows the pipeline stages:
// fork existence, then cycle detection, then change existence, then constant
// resolution.
//
// The constant table is built incrementally in chain order. Each change's
// symbolic values resolve against the table state immediately after that
// change's own constants merge in: a change may reference its own constants
// or an earlier change's, never a later one.
//
// Resolve is pure over the loaded universe, so concurrent calls need no
// locking and repeated calls yield identical schedules.
func (s *Service) Resolve(forkID string) (domain.ResolvedSchedule, error) {
	chain, err := s.Ancestry(forkID)
	if err != nil {
		return domain.ResolvedSchedule{}, err
	}

	ancestry := make([]string, 0, len(chain))
	var changeIDs []string
	for _, fork := range chain {
		ancestry = append(ancestry, fork.ID)
		changeIDs = append(changeIDs, fork.EIPs...)
	}

	// Change existence is checked for the whole chain before any merge work,
	// keeping the error precedence independent of where in the chain the
	// missing id sits relative to a constant error.
	for _, fork := range chain {
		for _, id := range fork.EIPs {
			if _, ok := s.universe.Change(id); !ok {
				return domain.ResolvedSchedule{}, &domain.ChangeNotFoundError{
					ChangeID:  id,
					ForkID:    fork.ID,
					Available: s.universe.ChangeIDs(),
				}
			}
		}
	}

	constants := make(map[string]int64)
	categories := make(map[string]map[string]int64)
	trace := domain.Trace{}

	for _, id := range changeIDs {
		change, _ := s.universe.Change(id)

		// The change's own constants join the table before its values
		// resolve, so self-references work and self-shadowing keeps the
		// change's own definition.
		maps.Copy(constants, change.Constants)

		resolved, err := resolveChange(change, constants)
		if err != nil {
			return domain.ResolvedSchedule{}, err
		}
		mergeCategories(categories, resolved, change.ID, trace)
	}

	return domain.ResolvedSchedule{
		Fork:       forkID,
		Ancestry:   ancestry,
		EIPs:       changeIDs,
		Constants:  constants,
		Categories: categories,
		Trace:      trace,
	}, nil
}

// resolveChange substitutes every symbolic value in one change's categories
// against the constant table visible at the change's chain position.
// Literals pass through untouched.
func resolveChange(change domain.Change, constants map[string]int64) (map[string]map[string]int64, error) {
	resolved := make(map[string]map[string]int64, len(change.Categories))
	// Deterministic iteration keeps the first ConstantNotFoundError stable
	// across runs of the same universe.
	for _, category := range sortedKeys(change.Categories) {
		members := change.Categories[category]
		out := make(map[string]int64, len(members))
		for _, member := range sortedKeys(members) {
			value := members[member]
			if !value.Symbolic() {
				out[member] = value.Amount
				continue
			}
			amount, ok := constants[value.Symbol]
			if !ok {
				return nil, &domain.ConstantNotFoundError{
					Symbol:    value.Symbol,
					ChangeID:  change.ID,
					Category:  category,
					Member:    member,
					Available: sortedKeys(constants),
				}
			}
			out[member] = amount
		}
		resolved[category] = out
	}
	return resolved, nil
}

// mergeCategories applies one resolved change onto the accumulator,
// last writer wins per (category, member) key, recording provenance for
// every write. Categories spring into existence on first write.
func mergeCategories(acc map[string]map[string]int64, resolved map[string]map[string]int64, changeID string, trace domain.Trace) {
	for _, category := range sortedKeys(resolved) {
		members := resolved[category]
		if acc[category] == nil {
			acc[category] = make(map[string]int64, len(members))
		}
		for _, member := range sortedKeys(members) {
			acc[category][member] = members[member]
			trace.Record(category, member, changeID, members[member])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
