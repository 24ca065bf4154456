package domain

import (
	"fmt"
	"strings"
)

// Sigil prefixes a symbolic value referencing a constant name.
const Sigil = "$"

// Value is one raw schedule value: either a literal amount or a symbolic
// reference to a constant declared at or before the owning change's position
// in the chain.
type Value struct {
	Amount int64
	Symbol string // non-empty means symbolic; Amount is ignored
}

// Literal builds a literal value.
func Literal(amount int64) Value {
	return Value{Amount: amount}
}

// Symbol builds a symbolic value referencing the named constant.
func Symbol(name string) Value {
	return Value{Symbol: name}
}

// Symbolic reports whether the value is a constant reference.
func (v Value) Symbolic() bool {
	return v.Symbol != ""
}

// String renders the value the way it is authored: a bare number for
// literals, a sigil-prefixed name for references.
func (v Value) String() string {
	if v.Symbolic() {
		return Sigil + v.Symbol
	}
	return fmt.Sprintf("%d", v.Amount)
}

// ParseSymbol extracts the constant name from a sigil-prefixed string.
// A string without the sigil, or with nothing after it, is invalid: plain
// strings never appear as schedule values.
func ParseSymbol(raw string) (Value, error) {
	if !strings.HasPrefix(raw, Sigil) {
		return Value{}, fmt.Errorf("%w: %q is neither a number nor a %sCONSTANT reference", ErrInvalidValue, raw, Sigil)
	}
	name := strings.TrimPrefix(raw, Sigil)
	if name == "" {
		return Value{}, fmt.Errorf("%w: empty constant reference", ErrInvalidValue)
	}
	return Symbol(name), nil
}

// Change is one named, atomic schedule delta: constants it declares and the
// category values it sets or overrides. Changes are immutable once loaded.
type Change struct {
	ID          string
	Description string
	Constants   map[string]int64
	Categories  map[string]map[string]Value
}

// Validate checks structural well-formedness of one loaded change. Duplicate
// keys cannot survive map decoding, so those are caught by the loader against
// the raw document; this re-checks everything that can still be wrong here.
func (c Change) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: change id is empty", ErrInvalidValue)
	}
	for name := range c.Constants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: change %s declares an unnamed constant", ErrInvalidValue, c.ID)
		}
	}
	for category, members := range c.Categories {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: change %s declares an unnamed category", ErrInvalidValue, c.ID)
		}
		for member, value := range members {
			if strings.TrimSpace(member) == "" {
				return fmt.Errorf("%w: change %s declares an unnamed member in category %s", ErrInvalidValue, c.ID, category)
			}
			if value.Symbolic() && strings.TrimSpace(value.Symbol) == "" {
				return fmt.Errorf("%w: change %s has an empty reference at %s.%s", ErrInvalidValue, c.ID, category, member)
			}
		}
	}
	return nil
}
