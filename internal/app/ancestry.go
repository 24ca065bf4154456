package app

import (
	"github.com/raceday/pitstop/internal/domain"
)

// Ancestry walks the extends chain starting at forkID and returns the fork
// sequence root-first, target-last. A parent id missing from the universe is
// a ForkNotFoundError naming the referencing fork; revisiting any fork before
// the walk reaches a root is a CycleError carrying the full cyclic path.
func (s *Service) Ancestry(forkID string) ([]domain.Fork, error) {
	if _, ok := s.universe.Fork(forkID); !ok {
		return nil, &domain.ForkNotFoundError{ForkID: forkID, Available: s.universe.ForkIDs()}
	}

	var chain []domain.Fork
	var path []string
	seen := make(map[string]struct{})

	current := forkID
	referencedBy := ""
	for current != "" {
		fork, ok := s.universe.Fork(current)
		if !ok {
			return nil, &domain.ForkNotFoundError{
				ForkID:       current,
				ReferencedBy: referencedBy,
				Available:    s.universe.ForkIDs(),
			}
		}
		if _, revisited := seen[current]; revisited {
			return nil, &domain.CycleError{Path: append(path, current)}
		}
		seen[current] = struct{}{}
		path = append(path, current)

		// Prepend so the result reads root to target.
		chain = append([]domain.Fork{fork}, chain...)
		referencedBy = current
		current = fork.Extends
	}

	return chain, nil
}

// ChangeIDs concatenates each chain fork's own change list in ancestry order,
// producing the full ordered change-id sequence for forkID.
func (s *Service) ChangeIDs(forkID string) ([]string, error) {
	chain, err := s.Ancestry(forkID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, fork := range chain {
		ids = append(ids, fork.EIPs...)
	}
	return ids, nil
}
