package models

import (
	"math"
	"testing"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
)

func spinDataset(t *testing.T, cols map[string][]float64) *pop.Dataset {
	t.Helper()
	d, err := pop.NewDataset(cols)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestIIDSpinMagnitudeBeta_MatchesIndependentWithEqualShapes(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"a_1": {0.1, 0.4, 0.8},
		"a_2": {0.2, 0.5, 0.3},
	})
	iid, err := IIDSpinMagnitudeBeta(d, map[string]float64{"amax": 1, "alpha_chi": 2, "beta_chi": 4})
	if err != nil {
		t.Fatal(err)
	}
	indep, err := IndependentSpinMagnitudeBeta(d, map[string]float64{
		"alpha_chi_1": 2, "alpha_chi_2": 2,
		"beta_chi_1": 4, "beta_chi_2": 4,
		"amax_1": 1, "amax_2": 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range iid {
		if math.Abs(iid[i]-indep[i]) > 1e-12 {
			t.Errorf("sample %d: iid=%v independent=%v", i, iid[i], indep[i])
		}
	}
}

func TestIIDSpinMagnitudeBeta_ZeroAboveAmax(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"a_1": {0.9},
		"a_2": {0.2},
	})
	p, err := IIDSpinMagnitudeBeta(d, map[string]float64{"amax": 0.8, "alpha_chi": 2, "beta_chi": 2})
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 0 {
		t.Errorf("density above amax = %v, want 0", p[0])
	}
}

func TestIIDSpinMagnitudeBeta_RejectsBadShapes(t *testing.T) {
	d := spinDataset(t, map[string][]float64{"a_1": {0.5}, "a_2": {0.5}})
	if _, err := IIDSpinMagnitudeBeta(d, map[string]float64{"amax": 1, "alpha_chi": -2, "beta_chi": 2}); err == nil {
		t.Error("negative alpha_chi accepted")
	}
}

func TestIIDSpinOrientation_PureIsotropic(t *testing.T) {
	// xi = 0 leaves only the isotropic term, flat at 1/4.
	d := spinDataset(t, map[string][]float64{
		"cos_tilt_1": {-0.9, 0, 0.9},
		"cos_tilt_2": {0.5, -0.5, 1},
	})
	p, err := IIDSpinOrientationGaussianIsotropic(d, map[string]float64{"xi_spin": 0, "sigma_spin": 0.5})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range p {
		if math.Abs(v-0.25) > 1e-12 {
			t.Errorf("sample %d: p = %v, want 0.25", i, v)
		}
	}
}

func TestIIDSpinOrientation_AlignedComponentPeaksAtUnity(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"cos_tilt_1": {1, -1},
		"cos_tilt_2": {1, -1},
	})
	p, err := IIDSpinOrientationGaussianIsotropic(d, map[string]float64{"xi_spin": 1, "sigma_spin": 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if p[0] <= p[1] {
		t.Errorf("aligned density %v not above anti-aligned %v", p[0], p[1])
	}
}

func TestIIDSpin_IsOrientationTimesMagnitude(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"a_1":        {0.3, 0.6},
		"a_2":        {0.4, 0.1},
		"cos_tilt_1": {0.9, -0.2},
		"cos_tilt_2": {0.8, 0.1},
	})
	params := map[string]float64{
		"xi_spin": 0.4, "sigma_spin": 0.6,
		"amax": 1, "alpha_chi": 3, "beta_chi": 2,
	}
	joint, err := IIDSpin(d, params)
	if err != nil {
		t.Fatal(err)
	}
	orientation, err := IIDSpinOrientationGaussianIsotropic(d, params)
	if err != nil {
		t.Fatal(err)
	}
	magnitude, err := IIDSpinMagnitudeBeta(d, params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range joint {
		want := orientation[i] * magnitude[i]
		if math.Abs(joint[i]-want) > 1e-12 {
			t.Errorf("sample %d: joint=%v, want %v", i, joint[i], want)
		}
	}
}

func TestGaussianChiEff_IntegratesToOne(t *testing.T) {
	xs := backend.Linspace(-1, 1, 2001)
	d := spinDataset(t, map[string][]float64{"chi_eff": xs})
	p, err := GaussianChiEff(d, map[string]float64{"mu_chi_eff": 0.1, "sigma_chi_eff": 0.3})
	if err != nil {
		t.Fatal(err)
	}
	total := backend.Trapz(xs, p)
	if math.Abs(total-1) > 1e-4 {
		t.Errorf("GaussianChiEff integrates to %v, want 1", total)
	}
}

func TestGaussianChiEffChiP_ZeroRhoMatchesProduct(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"chi_eff": {0.1, -0.3, 0.5},
		"chi_p":   {0.2, 0.6, 0.4},
	})
	params := map[string]float64{
		"mu_chi_eff": 0.05, "sigma_chi_eff": 0.3,
		"mu_chi_p": 0.3, "sigma_chi_p": 0.2,
		"rho": 0,
	}
	joint, err := GaussianChiEffChiP(d, params)
	if err != nil {
		t.Fatal(err)
	}
	eff, err := GaussianChiEff(d, params)
	if err != nil {
		t.Fatal(err)
	}
	cp, err := GaussianChiP(d, params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range joint {
		want := eff[i] * cp[i]
		if math.Abs(joint[i]-want) > 1e-12 {
			t.Errorf("sample %d: joint=%v, want %v", i, joint[i], want)
		}
	}
}

func TestGaussianChiEffChiP_CorrelatedIntegratesToOne(t *testing.T) {
	// Quadrature over the full support should recover unit probability.
	nEff, nP := 201, 101
	effAxis := backend.Linspace(-1, 1, nEff)
	pAxis := backend.Linspace(0, 1, nP)
	flatEff := make([]float64, 0, nEff*nP)
	flatP := make([]float64, 0, nEff*nP)
	for _, cp := range pAxis {
		for _, ce := range effAxis {
			flatEff = append(flatEff, ce)
			flatP = append(flatP, cp)
		}
	}
	d := spinDataset(t, map[string][]float64{"chi_eff": flatEff, "chi_p": flatP})
	prob, err := GaussianChiEffChiP(d, map[string]float64{
		"mu_chi_eff": 0.1, "sigma_chi_eff": 0.4,
		"mu_chi_p": 0.4, "sigma_chi_p": 0.3,
		"rho": 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	grid := make([][]float64, nP)
	for i := range pAxis {
		grid[i] = prob[i*nEff : (i+1)*nEff]
	}
	total := backend.Trapz2D(effAxis, pAxis, grid)
	if math.Abs(total-1) > 1e-2 {
		t.Errorf("correlated model integrates to %v, want 1", total)
	}
}

func TestSkewGaussianChiEff_ZeroSkewMatchesGaussian(t *testing.T) {
	d := spinDataset(t, map[string][]float64{"chi_eff": {-0.5, 0, 0.3}})
	skew, err := SkewGaussianChiEff(d, map[string]float64{
		"mu_chi_eff": 0.1, "sigma_chi_eff": 0.4, "skew_chi_eff": 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	plain, err := GaussianChiEff(d, map[string]float64{"mu_chi_eff": 0.1, "sigma_chi_eff": 0.4})
	if err != nil {
		t.Fatal(err)
	}
	for i := range skew {
		if math.Abs(skew[i]-plain[i]) > 1e-3 {
			t.Errorf("sample %d: skew=%v plain=%v", i, skew[i], plain[i])
		}
	}
}

func TestSkewGaussianChiEffChiP_ZeroRhoMatchesProduct(t *testing.T) {
	d := spinDataset(t, map[string][]float64{
		"chi_eff": {0.1, -0.3},
		"chi_p":   {0.2, 0.6},
	})
	params := map[string]float64{
		"mu_chi_eff": 0.05, "sigma_chi_eff": 0.3,
		"mu_chi_p": 0.3, "sigma_chi_p": 0.2,
		"skew_chi_eff": 2, "skew_chi_p": -1,
		"rho": 0,
	}
	joint, err := SkewGaussianChiEffChiP(d, params)
	if err != nil {
		t.Fatal(err)
	}
	eff, err := SkewGaussianChiEff(d, params)
	if err != nil {
		t.Fatal(err)
	}
	cp, err := SkewGaussianChiP(d, params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range joint {
		want := eff[i] * cp[i]
		if math.Abs(joint[i]-want) > 1e-12 {
			t.Errorf("sample %d: joint=%v, want %v", i, joint[i], want)
		}
	}
}

func TestSpinModels_MissingColumn(t *testing.T) {
	d := spinDataset(t, map[string][]float64{"a_1": {0.5}})
	if _, err := IIDSpinMagnitudeBeta(d, map[string]float64{"amax": 1, "alpha_chi": 2, "beta_chi": 2}); err == nil {
		t.Error("missing a_2 column accepted")
	}
}

func TestSpinModels_MissingHyperParameter(t *testing.T) {
	d := spinDataset(t, map[string][]float64{"a_1": {0.5}, "a_2": {0.5}})
	if _, err := IIDSpinMagnitudeBeta(d, map[string]float64{"amax": 1}); err == nil {
		t.Error("missing shape hyper-parameters accepted")
	}
}
