package domain

import (
	"fmt"
	"strings"
)

// Fork is a named point in the protocol's evolution: an ordered list of
// change ids plus optional inheritance from a parent fork. Forks are
// immutable input data.
type Fork struct {
	ID      string
	Extends string   // parent fork id, empty for roots
	EIPs    []string // ordered change ids, applied left to right
}

// Root reports whether the fork has no parent.
func (f Fork) Root() bool {
	return f.Extends == ""
}

// Validate checks structural well-formedness of one loaded fork. A change id
// repeating within the chain is legal (the merger is position-based and the
// later occurrence wins), so repeats are not rejected here.
func (f Fork) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: fork id is empty", ErrInvalidValue)
	}
	for _, id := range f.EIPs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: fork %s lists an empty change id", ErrInvalidValue, f.ID)
		}
	}
	return nil
}
