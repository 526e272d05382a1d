package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
)

// InterpolatedIdentical is a non-parametric node model applied identically
// and independently to a pair of columns: the log density is a natural
// cubic spline through fixed, evenly spaced nodes whose heights f0..f{n-1}
// are hyper-parameters, and p(x) ∝ exp(spline(x)) normalised by quadrature.
type InterpolatedIdentical struct {
	parameters []string
	minimum    float64
	maximum    float64
	xNodes     []float64
	normGrid   []float64
}

const interpNormGridSize = 1000

func newInterpolatedIdentical(parameters []string, minimum, maximum float64, nodes int) (*InterpolatedIdentical, error) {
	if nodes < 3 {
		return nil, fmt.Errorf("spline model requires at least 3 nodes, got %d", nodes)
	}
	if maximum <= minimum {
		return nil, fmt.Errorf("spline model requires maximum > minimum, got [%g, %g]", minimum, maximum)
	}
	return &InterpolatedIdentical{
		parameters: parameters,
		minimum:    minimum,
		maximum:    maximum,
		xNodes:     backend.Linspace(minimum, maximum, nodes),
		normGrid:   backend.Linspace(minimum, maximum, interpNormGridSize),
	}, nil
}

// NodeKeys returns the hyper-parameter names, f0..f{n-1}.
func (m *InterpolatedIdentical) NodeKeys() []string {
	keys := make([]string, len(m.xNodes))
	for i := range keys {
		keys[i] = fmt.Sprintf("f%d", i)
	}
	return keys
}

func (m *InterpolatedIdentical) Prob(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	keys := m.NodeKeys()
	if err := pop.RequireParams(params, keys...); err != nil {
		return nil, err
	}
	fNodes := make([]float64, len(keys))
	for i, k := range keys {
		fNodes[i] = params[k]
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(m.xNodes, fNodes); err != nil {
		return nil, fmt.Errorf("fitting density spline: %w", err)
	}

	gridVals := make([]float64, len(m.normGrid))
	for i, x := range m.normGrid {
		gridVals[i] = math.Exp(spline.Predict(x))
	}
	norm := backend.Trapz(m.normGrid, gridVals)
	if norm <= 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
		return nil, fmt.Errorf("spline density normalisation is not finite")
	}

	var out []float64
	for _, name := range m.parameters {
		col, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make([]float64, len(col))
			for i := range out {
				out[i] = 1
			}
		}
		for i, x := range col {
			if x < m.minimum || x > m.maximum {
				out[i] = 0
				continue
			}
			out[i] *= math.Exp(spline.Predict(x)) / norm
		}
	}
	return out, nil
}

// NewSplineSpinMagnitudeIdentical models both spin magnitudes with one
// shared spline density on [0, 1]. Spec option: nodes (default 5).
func NewSplineSpinMagnitudeIdentical(spec pop.Spec) (pop.Model, error) {
	return newInterpolatedIdentical(
		[]string{"a_1", "a_2"},
		option(spec, "minimum", 0),
		option(spec, "maximum", 1),
		int(option(spec, "nodes", 5)),
	)
}

// NewSplineSpinTiltIdentical models both tilt cosines with one shared
// spline density on [-1, 1]. Spec option: nodes (default 5).
func NewSplineSpinTiltIdentical(spec pop.Spec) (pop.Model, error) {
	return newInterpolatedIdentical(
		[]string{"cos_tilt_1", "cos_tilt_2"},
		option(spec, "minimum", -1),
		option(spec, "maximum", 1),
		int(option(spec, "nodes", 5)),
	)
}
