package app

import (
	"github.com/aymanbagabas/go-udiff"
)

// Verify compares expected generated output against the actual file content.
// It returns true with an empty diff on a byte-identical match, otherwise
// false plus a unified diff labeled with the given names.
func Verify(expectedLabel, actualLabel, expected, actual string) (bool, string) {
	if expected == actual {
		return true, ""
	}
	return false, udiff.Unified(expectedLabel, actualLabel, expected, actual)
}
