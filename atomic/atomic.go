// Package atomic loads the precomputed atomic-physics tables used for
// non-equilibrium ionization modeling: temperature-dependent
// ionization and recombination rates, equilibrium charge states, and
// eigen-decompositions of the ionization rate matrix for each element.
//
// The tables are generated from the CHIANTI database by the routines
// of Shen et al. (2015), one Fortran unformatted file per element,
// available at https://github.com/ionizationcalc/time_dependent_fortran.
package atomic

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/NEI-modeling/SunNEI/element"
	"github.com/NEI-modeling/SunNEI/fortran"
)

// Temperature grids from independently generated files may differ in
// the last bits; comparison uses |a-b| <= absTol + relTol*|b|.
const (
	gridRelTol = 1e-5
	gridAbsTol = 1e-8
)

// ElementTable holds the per-element tables. Matrices are indexed
// [temperature, ionization stage]; the eigenvector tensors hold one
// NStates x NStates matrix per temperature.
type ElementTable struct {
	Symbol       string
	AtomicNumber int
	NStates      int

	EquiState       *mat.Dense   // equilibrium ionization fractions
	Eigenvalues     *mat.Dense   // eigenvalues of the rate matrix
	Eigenvectors    []*mat.Dense // one matrix per temperature
	EigenvectorsInv []*mat.Dense
	IonizRate       *mat.Dense
	RecombRate      *mat.Dense
}

// EquiRow returns a copy of the equilibrium ionization fractions at
// temperature index i. Mutating the result never touches the table.
func (t *ElementTable) EquiRow(i int) []float64 {
	return mat.Row(nil, i, t.EquiState)
}

// Collection holds the tables for a set of elements loaded together.
// The temperature axis is shared: every table is sampled on the same
// ascending log10-temperature grid.
type Collection struct {
	Elements     []string // request order
	NTe          int      // temperature grid length
	NElems       int      // element count recorded in the files
	Temperatures []float64
	Tables       map[string]*ElementTable
}

// Table returns the table for symbol, or nil if the collection does
// not hold it.
func (c *Collection) Table(symbol string) *ElementTable {
	return c.Tables[symbol]
}

// FileName returns the table file name for an element symbol,
// e.g. "feeigen.dat" for Fe.
func FileName(symbol string) string {
	return strings.ToLower(symbol) + "eigen.dat"
}

// Load reads the eigen-table file for each requested element from
// dir and assembles them into a Collection. The first element's
// temperature axis is adopted as the shared grid; every later element
// must match it or the load fails with ErrInconsistentGrid. On any
// failure no partial collection is returned.
func Load(elements []string, dir string) (*Collection, error) {
	coll := &Collection{
		Tables: make(map[string]*ElementTable, len(elements)),
	}
	first := true
	for _, symbol := range elements {
		table, nte, nelems, temps, err := readTable(dir, symbol)
		if err != nil {
			return nil, err
		}
		if first {
			coll.NTe = nte
			coll.NElems = nelems
			coll.Temperatures = temps
			first = false
		} else {
			if nte != coll.NTe {
				return nil, fmt.Errorf("%w: %s has %d temperature levels, want %d",
					ErrInconsistentGrid, symbol, nte, coll.NTe)
			}
			if nelems != coll.NElems {
				return nil, fmt.Errorf("%w: %s records %d elements, want %d",
					ErrInconsistentGrid, symbol, nelems, coll.NElems)
			}
			if !gridsClose(coll.Temperatures, temps) {
				return nil, fmt.Errorf("%w: %s has different temperature bins",
					ErrInconsistentGrid, symbol)
			}
		}
		coll.Elements = append(coll.Elements, symbol)
		coll.Tables[symbol] = table
	}
	return coll, nil
}

// readTable parses one element's file: a header record (grid length,
// element count), the temperature grid, then the six data tables in
// fixed order. The state count comes from the registry, not the file.
func readTable(dir, symbol string) (*ElementTable, int, int, []float64, error) {
	z, err := element.AtomicNumber(symbol)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	nstates := z + 1

	path := filepath.Join(dir, FileName(symbol))
	f, err := fortran.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, 0, nil, fmt.Errorf("%w: %s (element %s)",
				ErrMissingResource, path, symbol)
		}
		return nil, 0, 0, nil, fmt.Errorf("%w: %s: %v", ErrMalformedResource, path, err)
	}
	defer f.Close()

	header, err := f.ReadInts()
	if err != nil {
		return nil, 0, 0, nil, malformed(path, "header", err)
	}
	if len(header) != 2 {
		return nil, 0, 0, nil, malformed(path, "header",
			fmt.Errorf("got %d values, want 2", len(header)))
	}
	nte, nelems := int(header[0]), int(header[1])
	if nte <= 0 {
		return nil, 0, 0, nil, malformed(path, "header",
			fmt.Errorf("non-positive grid length %d", nte))
	}

	temps, err := readVector(f, path, "temperatures", nte)
	if err != nil {
		return nil, 0, 0, nil, err
	}

	table := &ElementTable{
		Symbol:       symbol,
		AtomicNumber: z,
		NStates:      nstates,
	}
	if table.EquiState, err = readMatrix(f, path, "equistate", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	if table.Eigenvalues, err = readMatrix(f, path, "eigenvalues", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	if table.Eigenvectors, err = readTensor(f, path, "eigenvectors", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	if table.EigenvectorsInv, err = readTensor(f, path, "eigenvector inverses", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	if table.IonizRate, err = readMatrix(f, path, "ionization rates", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	if table.RecombRate, err = readMatrix(f, path, "recombination rates", nte, nstates); err != nil {
		return nil, 0, 0, nil, err
	}
	return table, nte, nelems, temps, nil
}

func readVector(f *fortran.File, path, name string, n int) ([]float64, error) {
	vals, err := f.ReadReals()
	if err != nil {
		return nil, malformed(path, name, err)
	}
	if len(vals) != n {
		return nil, malformed(path, name,
			fmt.Errorf("got %d values, want %d", len(vals), n))
	}
	return vals, nil
}

func readMatrix(f *fortran.File, path, name string, nte, nstates int) (*mat.Dense, error) {
	vals, err := readVector(f, path, name, nte*nstates)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(nte, nstates, vals), nil
}

func readTensor(f *fortran.File, path, name string, nte, nstates int) ([]*mat.Dense, error) {
	vals, err := readVector(f, path, name, nte*nstates*nstates)
	if err != nil {
		return nil, err
	}
	out := make([]*mat.Dense, nte)
	stride := nstates * nstates
	for i := range out {
		out[i] = mat.NewDense(nstates, nstates, vals[i*stride:(i+1)*stride])
	}
	return out, nil
}

func malformed(path, record string, err error) error {
	return fmt.Errorf("%w: %s: %s record: %v", ErrMalformedResource, path, record, err)
}

func gridsClose(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > gridAbsTol+gridRelTol*math.Abs(b[i]) {
			return false
		}
	}
	return true
}
