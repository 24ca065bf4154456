package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForkNotFound and related sentinels classify resolution failures. Typed
// errors below wrap one sentinel each so callers can match with errors.Is
// while still extracting context via errors.As.
var (
	ErrForkNotFound     = errors.New("fork not found")
	ErrChangeNotFound   = errors.New("change not found")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrConstantNotFound = errors.New("constant not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrInvalidValue     = errors.New("invalid value")
)

// ForkNotFoundError reports a fork id missing from the loaded universe,
// either as a resolution target or as an extends parent.
type ForkNotFoundError struct {
	ForkID       string
	ReferencedBy string   // fork whose extends named ForkID, empty for targets
	Available    []string // known fork ids, sorted
}

func (e *ForkNotFoundError) Error() string {
	msg := fmt.Sprintf("fork not found: %s", e.ForkID)
	if e.ReferencedBy != "" {
		msg += fmt.Sprintf(" (extended by %s)", e.ReferencedBy)
	}
	if len(e.Available) > 0 {
		msg += fmt.Sprintf("; available forks: %s", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *ForkNotFoundError) Unwrap() error { return ErrForkNotFound }

// ChangeNotFoundError reports a change id named by a fork's change list that
// is missing from the loaded universe.
type ChangeNotFoundError struct {
	ChangeID  string
	ForkID    string // fork whose list named ChangeID
	Available []string
}

func (e *ChangeNotFoundError) Error() string {
	msg := fmt.Sprintf("change not found: %s", e.ChangeID)
	if e.ForkID != "" {
		msg += fmt.Sprintf(" (listed by fork %s)", e.ForkID)
	}
	if len(e.Available) > 0 {
		msg += fmt.Sprintf("; available changes: %s", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *ChangeNotFoundError) Unwrap() error { return ErrChangeNotFound }

// CycleError reports a cycle in the extends relation. Path holds the full
// cyclic walk in visitation order, ending at the revisited fork.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in fork chain: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// DuplicateKeyError reports a single change declaring the same constant name
// or (category, member) pair twice. Section is "constants" or the category
// name the key appeared under.
type DuplicateKeyError struct {
	ChangeID string
	Section  string
	Key      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("change %s declares duplicate key %q in %s", e.ChangeID, e.Key, e.Section)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// ConstantNotFoundError reports a symbolic reference that does not resolve
// against the constant table visible at its position in the chain.
type ConstantNotFoundError struct {
	Symbol    string
	ChangeID  string
	Category  string
	Member    string
	Available []string // constants in scope, sorted
}

func (e *ConstantNotFoundError) Error() string {
	msg := fmt.Sprintf("constant $%s not found (change %s, %s.%s)", e.Symbol, e.ChangeID, e.Category, e.Member)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf("; constants in scope: %s", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *ConstantNotFoundError) Unwrap() error { return ErrConstantNotFound }

// CategoryNotFoundError reports an unguarded lookup of a category absent from
// a resolved schedule.
type CategoryNotFoundError struct {
	Fork     string
	Category string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("schedule %s has no category %q", e.Fork, e.Category)
}

func (e *CategoryNotFoundError) Unwrap() error { return ErrCategoryNotFound }

// MemberNotFoundError reports an unguarded lookup of a member absent from a
// category that does exist.
type MemberNotFoundError struct {
	Fork     string
	Category string
	Member   string
}

func (e *MemberNotFoundError) Error() string {
	return fmt.Sprintf("schedule %s has no member %q in category %q", e.Fork, e.Member, e.Category)
}

func (e *MemberNotFoundError) Unwrap() error { return ErrMemberNotFound }
