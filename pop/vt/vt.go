// Package vt estimates selection effects: the fraction of the astrophysical
// population a detector network would actually observe (sensitive
// volume-time normalisation). Two estimators are provided, a quadrature
// over a sensitivity grid and resampling of a found-injection campaign.
package vt

import (
	"fmt"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
)

// Result carries a detection efficiency estimate with its Monte Carlo
// uncertainty. EffectiveSamples is the number of independent draws the
// weighted estimate is worth; likelihood code must treat estimates with too
// few effective samples as unusable rather than merely noisy.
type Result struct {
	Efficiency       float64
	Variance         float64
	EffectiveSamples float64
}

// Estimator maps population hyper-parameters to a detection efficiency.
type Estimator interface {
	Efficiency(params map[string]float64) (Result, error)
}

// Grid integrates model × sensitivity over a two-axis parameter grid by
// trapezoidal quadrature. The sensitivity grid vt[i][j] is indexed
// [yAxis][xAxis], row-major.
type Grid struct {
	model pop.Model
	xName string
	yName string
	xs    []float64
	ys    []float64
	vt    [][]float64
	data  *pop.Dataset
}

// NewGrid builds a Grid estimator. xs and ys are the axis values for the
// named parameters; vt holds the sensitivity at each grid point.
func NewGrid(model pop.Model, xName, yName string, xs, ys []float64, vt [][]float64) (*Grid, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("grid estimator requires at least 2 points per axis")
	}
	if len(vt) != len(ys) {
		return nil, fmt.Errorf("sensitivity grid has %d rows, want %d", len(vt), len(ys))
	}
	for i, row := range vt {
		if len(row) != len(xs) {
			return nil, fmt.Errorf("sensitivity grid row %d has %d columns, want %d", i, len(row), len(xs))
		}
	}
	// Flatten the meshgrid once; Efficiency evaluates the model on it.
	xGrid, yGrid := backend.Meshgrid(xs, ys)
	flatX := make([]float64, 0, len(xs)*len(ys))
	flatY := make([]float64, 0, len(xs)*len(ys))
	for i := range ys {
		flatX = append(flatX, xGrid[i]...)
		flatY = append(flatY, yGrid[i]...)
	}
	data, err := pop.NewDataset(map[string][]float64{xName: flatX, yName: flatY})
	if err != nil {
		return nil, err
	}
	return &Grid{model: model, xName: xName, yName: yName, xs: xs, ys: ys, vt: vt, data: data}, nil
}

func (g *Grid) Efficiency(params map[string]float64) (Result, error) {
	prob, err := g.model.Prob(g.data, params)
	if err != nil {
		return Result{}, err
	}
	weighted := make([][]float64, len(g.ys))
	for i := range g.ys {
		row := make([]float64, len(g.xs))
		for j := range g.xs {
			row[j] = prob[i*len(g.xs)+j] * g.vt[i][j]
		}
		weighted[i] = row
	}
	eff := backend.Trapz2D(g.xs, g.ys, weighted)
	// Quadrature has no sampling noise.
	return Result{Efficiency: eff, Variance: 0, EffectiveSamples: float64(len(g.xs) * len(g.ys))}, nil
}
