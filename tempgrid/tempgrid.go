// Package tempgrid locates temperatures on the ascending
// log-temperature grid shared by the atomic-data tables.
package tempgrid

import (
	"math"
	"sort"
)

// Nearest returns the index of the grid entry closest to x. The grid
// must be non-empty and sorted ascending. Equidistant neighbors
// resolve to the lower index.
func Nearest(x float64, grid []float64) int {
	if len(grid) == 0 {
		panic("tempgrid: empty grid")
	}
	i := sort.SearchFloat64s(grid, x)
	if i == 0 {
		return 0
	}
	if i == len(grid) {
		return len(grid) - 1
	}
	if x-grid[i-1] <= grid[i]-x {
		return i - 1
	}
	return i
}

// NearestLog returns the index of the grid entry closest to
// temperature te, where the grid holds log10 temperatures and the
// distance is measured in linear temperature. Equidistant neighbors
// resolve to the lower index. te must be positive.
func NearestLog(te float64, grid []float64) int {
	if len(grid) == 0 {
		panic("tempgrid: empty grid")
	}
	logTe := math.Log10(te)
	i := sort.SearchFloat64s(grid, logTe)
	if i == 0 {
		return 0
	}
	if i == len(grid) {
		return len(grid) - 1
	}
	left := math.Abs(te - math.Pow(10, grid[i-1]))
	right := math.Abs(te - math.Pow(10, grid[i]))
	if left <= right {
		return i - 1
	}
	return i
}
