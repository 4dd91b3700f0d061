// Package element maps chemical element symbols to atomic numbers for
// the first 28 elements (H through Ni), the range covered by the
// eigen-decomposition tables used in non-equilibrium ionization
// calculations.
package element

import (
	"errors"
	"fmt"
)

// ErrUnknownElement is returned when a symbol is not in the registry.
var ErrUnknownElement = errors.New("element: unknown symbol")

// symbols lists the supported elements in atomic-number order, so that
// symbols[i] has atomic number i+1.
var symbols = [...]string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni",
}

var atomicNumbers = buildRegistry()

func buildRegistry() map[string]int {
	m := make(map[string]int, len(symbols))
	for i, s := range symbols {
		m[s] = i + 1
	}
	return m
}

// AtomicNumber returns the atomic number Z for a symbol.
func AtomicNumber(symbol string) (int, error) {
	z, ok := atomicNumbers[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return z, nil
}

// NStates returns the number of ionization stages for a symbol,
// Z+1: neutral through fully stripped.
func NStates(symbol string) (int, error) {
	z, err := AtomicNumber(symbol)
	if err != nil {
		return 0, err
	}
	return z + 1, nil
}

// IsKnown reports whether the registry contains symbol.
func IsKnown(symbol string) bool {
	_, ok := atomicNumbers[symbol]
	return ok
}

// Symbols returns all registered symbols in atomic-number order.
func Symbols() []string {
	out := make([]string, len(symbols))
	copy(out, symbols[:])
	return out
}

// Count returns the number of registered elements.
func Count() int { return len(symbols) }

// DefaultElements returns the twelve most abundant elements in the
// solar corona, the usual working set for solar-wind charge-state
// modeling.
func DefaultElements() []string {
	return []string{
		"H", "He", "C",
		"N", "O", "Ne",
		"Mg", "Si", "S",
		"Ar", "Ca", "Fe",
	}
}
