// Package backend provides the numerical kernels shared by the model and
// likelihood packages: grid construction, trapezoidal quadrature, and
// bounded parallel evaluation. It is a thin layer over gonum so the rest of
// the tree never reaches for raw loops when a vector kernel exists.
package backend

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Linspace returns n evenly spaced points covering [start, stop] inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

// Trapz integrates y over the (sorted, ascending) abscissa x by the
// trapezoidal rule.
func Trapz(x, y []float64) float64 {
	return integrate.Trapezoidal(x, y)
}

// Trapz2D integrates a grid[i][j] over ys (outer index) and xs (inner
// index): the inner axis is reduced first, matching row-major meshgrid
// layout.
func Trapz2D(xs, ys []float64, grid [][]float64) float64 {
	inner := make([]float64, len(ys))
	for i, row := range grid {
		inner[i] = integrate.Trapezoidal(xs, row)
	}
	return integrate.Trapezoidal(ys, inner)
}

// CumTrapz returns the running trapezoidal integral of y over x, with
// out[0] == 0 and len(out) == len(x).
func CumTrapz(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		out[i] = out[i-1] + 0.5*(x[i]-x[i-1])*(y[i]+y[i-1])
	}
	return out
}

// LogSumExp returns log(sum(exp(v))) without overflow.
func LogSumExp(v []float64) float64 {
	return floats.LogSumExp(v)
}

// Meshgrid expands axis vectors xs (inner) and ys (outer) to a row-major
// grid of (x, y) pairs; both returned grids are indexed [iy][ix].
func Meshgrid(xs, ys []float64) (xGrid, yGrid [][]float64) {
	xGrid = make([][]float64, len(ys))
	yGrid = make([][]float64, len(ys))
	for i, y := range ys {
		xGrid[i] = make([]float64, len(xs))
		yGrid[i] = make([]float64, len(xs))
		copy(xGrid[i], xs)
		for j := range xs {
			yGrid[i][j] = y
		}
	}
	return xGrid, yGrid
}
