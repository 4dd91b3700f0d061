// Package chargestate builds and reshapes ionization-stage
// distributions for non-equilibrium ionization runs. A distribution
// for an element of atomic number Z has Z+1 entries, index 0 the
// neutral fraction and index Z the fully stripped fraction; the
// entries sum to one.
package chargestate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/NEI-modeling/SunNEI/atomic"
	"github.com/NEI-modeling/SunNEI/element"
	"github.com/NEI-modeling/SunNEI/tempgrid"
)

// Clamp bounds for roundoff in the source tables, and the tolerance
// on the post-cleanup sum.
const (
	zeroClamp = 1e-14
	oneClamp  = 9e-10
	sumTol    = 1e-9
)

var (
	// ErrNotNormalized is returned when a cleaned distribution does
	// not sum to one within tolerance.
	ErrNotNormalized = errors.New("chargestate: distribution does not sum to one")

	// ErrInvalidAtomicData is returned when an operation that
	// requires pre-loaded atomic data is given none, or data missing
	// the requested element.
	ErrInvalidAtomicData = errors.New("chargestate: invalid atomic data")

	// ErrShapeMismatch is returned by Reformat when a snapshot's
	// distribution length disagrees with an element's state count.
	ErrShapeMismatch = errors.New("chargestate: distribution shape mismatch")
)

// Distribution holds the ionization fractions of one element.
type Distribution []float64

// Clone returns an independent copy of the distribution.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	copy(out, d)
	return out
}

// Collection maps element symbols to their distributions at one
// instant.
type Collection map[string]Distribution

// Clone returns a deep copy, so a time advance can snapshot its state
// before mutating it.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for sym, d := range c {
		out[sym] = d.Clone()
	}
	return out
}

// TimeSeries maps element symbols to a (steps+1) x (Z+1) matrix of
// distributions over time, row istep holding the state after istep
// advances.
type TimeSeries map[string]*mat.Dense

// IndexResolver maps a temperature to an index into an ascending
// temperature grid. The time-advance collaborator may supply its own;
// the default is tempgrid.NearestLog.
type IndexResolver func(temperature float64, grid []float64) int

// InitNeutral builds a distribution for each element with the entire
// population in the neutral stage.
func InitNeutral(elements []string) (Collection, error) {
	states := make(Collection, len(elements))
	for _, symbol := range elements {
		nstates, err := element.NStates(symbol)
		if err != nil {
			return nil, err
		}
		d := make(Distribution, nstates)
		d[0] = 1.0
		states[symbol] = d
	}
	return states, nil
}

// InitEquilibrium builds the equilibrium distribution of each element
// at temperature te (kelvin) from pre-loaded atomic data. Each
// distribution is copied out of the table, cleaned of roundoff, and
// checked to sum to one.
func InitEquilibrium(data *atomic.Collection, elements []string, te float64) (Collection, error) {
	return InitEquilibriumUsing(data, elements, te, tempgrid.NearestLog)
}

// InitEquilibriumUsing is InitEquilibrium with a caller-supplied
// temperature index resolver.
func InitEquilibriumUsing(data *atomic.Collection, elements []string, te float64, resolve IndexResolver) (Collection, error) {
	if te <= 0 {
		return nil, fmt.Errorf("chargestate: temperature must be positive, got %g", te)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: no collection supplied", ErrInvalidAtomicData)
	}
	index := resolve(te, data.Temperatures)
	states := make(Collection, len(elements))
	for _, symbol := range elements {
		table := data.Table(symbol)
		if table == nil {
			return nil, fmt.Errorf("%w: no table for %s", ErrInvalidAtomicData, symbol)
		}
		d := Distribution(table.EquiRow(index))
		cleanup(d)
		if err := checkNormalized(symbol, d); err != nil {
			return nil, err
		}
		states[symbol] = d
	}
	return states, nil
}

// LoadEquilibrium reads the atomic data for exactly the requested
// elements from dir and builds their equilibrium distributions at
// temperature te. Callers initializing more than once should load
// once with atomic.Load and use InitEquilibrium instead.
func LoadEquilibrium(elements []string, dir string, te float64) (Collection, error) {
	data, err := atomic.Load(elements, dir)
	if err != nil {
		return nil, err
	}
	return InitEquilibrium(data, elements, te)
}

// Equilibrium returns the equilibrium distribution of a single
// element at temperature te. The atomic data must be supplied; this
// path never loads from storage.
func Equilibrium(data *atomic.Collection, symbol string, te float64) (Distribution, error) {
	if te <= 0 {
		return nil, fmt.Errorf("chargestate: temperature must be positive, got %g", te)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: no collection supplied", ErrInvalidAtomicData)
	}
	table := data.Table(symbol)
	if table == nil {
		return nil, fmt.Errorf("%w: no table for %s", ErrInvalidAtomicData, symbol)
	}
	index := tempgrid.NearestLog(te, data.Temperatures)
	d := Distribution(table.EquiRow(index))
	cleanup(d)
	if err := checkNormalized(symbol, d); err != nil {
		return nil, err
	}
	return d, nil
}

// cleanup clamps roundoff from the source tables: tiny negatives and
// underflows to zero, slight overshoots of one back to one. Values
// out of range by more than the clamp bounds are left for the sum
// check to reject.
func cleanup(d Distribution) {
	for i, v := range d {
		switch {
		case v < zeroClamp:
			d[i] = 0.0
		case v > 1.0 && v <= 1.0+oneClamp:
			d[i] = 1.0
		}
	}
}

func checkNormalized(symbol string, d Distribution) error {
	sum := floats.Sum(d)
	if sum <= 1.0-sumTol || sum >= 1.0+sumTol {
		return fmt.Errorf("%w: %s sums to %.12g", ErrNotNormalized, symbol, sum)
	}
	return nil
}

// Reformat converts a time-ordered list of snapshots (the initial
// state plus one per step, steps+1 in all) into one matrix per
// element, row istep holding that element's distribution at step
// istep. No numerical cleanup is reapplied.
func Reformat(stepList []Collection, elements []string, steps int) (TimeSeries, error) {
	if len(stepList) != steps+1 {
		return nil, fmt.Errorf("%w: %d snapshots for %d steps, want %d",
			ErrShapeMismatch, len(stepList), steps, steps+1)
	}
	series := make(TimeSeries, len(elements))
	for _, symbol := range elements {
		nstates, err := element.NStates(symbol)
		if err != nil {
			return nil, err
		}
		m := mat.NewDense(steps+1, nstates, nil)
		for istep, snapshot := range stepList {
			d, ok := snapshot[symbol]
			if !ok {
				return nil, fmt.Errorf("%w: step %d has no entry for %s",
					ErrShapeMismatch, istep, symbol)
			}
			if len(d) != nstates {
				return nil, fmt.Errorf("%w: step %d %s has %d states, want %d",
					ErrShapeMismatch, istep, symbol, len(d), nstates)
			}
			m.SetRow(istep, d)
		}
		series[symbol] = m
	}
	return series, nil
}
