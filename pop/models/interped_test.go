package models

import (
	"fmt"
	"math"
	"testing"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
)

func nodeParams(n int, value float64) map[string]float64 {
	params := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		params[fmt.Sprintf("f%d", i)] = value
	}
	return params
}

func TestSplineSpinMagnitude_FlatNodesGiveUniform(t *testing.T) {
	// Equal node heights make the spline constant, so exp(spline)/norm is
	// the uniform density on [0, 1] applied to both magnitudes.
	m, err := NewSplineSpinMagnitudeIdentical(pop.Spec{Type: "spline_spin_magnitude_identical"})
	if err != nil {
		t.Fatal(err)
	}
	d := spinDataset(t, map[string][]float64{
		"a_1": {0.1, 0.5, 0.9},
		"a_2": {0.2, 0.6, 0.8},
	})
	p, err := m.Prob(d, nodeParams(5, 2.0))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range p {
		if math.Abs(v-1) > 1e-6 {
			t.Errorf("sample %d: p = %v, want 1 (uniform squared)", i, v)
		}
	}
}

func TestSplineSpinTilt_FlatNodesGiveUniform(t *testing.T) {
	m, err := NewSplineSpinTiltIdentical(pop.Spec{Type: "spline_spin_tilt_identical"})
	if err != nil {
		t.Fatal(err)
	}
	d := spinDataset(t, map[string][]float64{
		"cos_tilt_1": {-0.8, 0, 0.8},
		"cos_tilt_2": {0.5, -0.5, 0.1},
	})
	p, err := m.Prob(d, nodeParams(5, -1.0))
	if err != nil {
		t.Fatal(err)
	}
	// Uniform on [-1, 1] is 1/2 per component.
	for i, v := range p {
		if math.Abs(v-0.25) > 1e-6 {
			t.Errorf("sample %d: p = %v, want 0.25", i, v)
		}
	}
}

func TestSplineModel_IntegratesToOnePerComponent(t *testing.T) {
	m, err := NewSplineSpinMagnitudeIdentical(pop.Spec{
		Type:    "spline_spin_magnitude_identical",
		Options: map[string]float64{"nodes": 6},
	})
	if err != nil {
		t.Fatal(err)
	}
	params := nodeParams(6, 0)
	params["f1"] = 1.5
	params["f4"] = -2

	xs := backend.Linspace(0, 1, 2001)
	fixed := make([]float64, len(xs))
	for i := range fixed {
		fixed[i] = 0.5
	}
	d := spinDataset(t, map[string][]float64{"a_1": xs, "a_2": fixed})
	p, err := m.Prob(d, params)
	if err != nil {
		t.Fatal(err)
	}
	// Divide out the constant a_2 factor, leaving the a_1 marginal.
	half := spinDataset(t, map[string][]float64{"a_1": {0.5}, "a_2": {0.5}})
	pHalf, err := m.Prob(half, params)
	if err != nil {
		t.Fatal(err)
	}
	a2Factor := math.Sqrt(pHalf[0])
	marginal := make([]float64, len(p))
	for i := range p {
		marginal[i] = p[i] / a2Factor
	}
	total := backend.Trapz(xs, marginal)
	if math.Abs(total-1) > 1e-3 {
		t.Errorf("a_1 marginal integrates to %v, want 1", total)
	}
}

func TestSplineModel_ZeroOutsideDomain(t *testing.T) {
	m, err := NewSplineSpinMagnitudeIdentical(pop.Spec{Type: "spline_spin_magnitude_identical"})
	if err != nil {
		t.Fatal(err)
	}
	d := spinDataset(t, map[string][]float64{
		"a_1": {1.2},
		"a_2": {0.5},
	})
	p, err := m.Prob(d, nodeParams(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 0 {
		t.Errorf("density outside [0, 1] = %v, want 0", p[0])
	}
}

func TestSplineModel_MissingNodeParameter(t *testing.T) {
	m, err := NewSplineSpinMagnitudeIdentical(pop.Spec{Type: "spline_spin_magnitude_identical"})
	if err != nil {
		t.Fatal(err)
	}
	d := spinDataset(t, map[string][]float64{"a_1": {0.5}, "a_2": {0.5}})
	if _, err := m.Prob(d, nodeParams(4, 0)); err == nil {
		t.Error("missing f4 accepted")
	}
}

func TestNewInterpolatedIdentical_RejectsTooFewNodes(t *testing.T) {
	_, err := NewSplineSpinMagnitudeIdentical(pop.Spec{
		Type:    "spline_spin_magnitude_identical",
		Options: map[string]float64{"nodes": 2},
	})
	if err == nil {
		t.Error("2-node spline accepted")
	}
}
