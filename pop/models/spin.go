// Package models provides the population models: mass spectra, spin
// magnitude and orientation distributions, effective-spin Gaussians,
// redshift evolution, and spline node models. Every model is registered
// with the pop registry in register.go.
package models

import (
	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
	"github.com/gwpop/gwpop/pop/stats"
)

// IIDSpin models independently and identically distributed spins: Beta
// distributed magnitudes and an isotropic + truncated half-Gaussian mixture
// for the orientations.
// Hyper-parameters: xi_spin, sigma_spin, amax, alpha_chi, beta_chi.
func IIDSpin(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	orientation, err := IIDSpinOrientationGaussianIsotropic(d, params)
	if err != nil {
		return nil, err
	}
	magnitude, err := IIDSpinMagnitudeBeta(d, params)
	if err != nil {
		return nil, err
	}
	for i := range orientation {
		orientation[i] *= magnitude[i]
	}
	return orientation, nil
}

// IIDSpinMagnitudeBeta models both spin magnitudes as draws from the same
// Beta distribution on [0, amax].
// Hyper-parameters: amax, alpha_chi, beta_chi. Columns: a_1, a_2.
func IIDSpinMagnitudeBeta(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "amax", "alpha_chi", "beta_chi"); err != nil {
		return nil, err
	}
	return independentSpinMagnitudeBeta(d,
		params["alpha_chi"], params["alpha_chi"],
		params["beta_chi"], params["beta_chi"],
		params["amax"], params["amax"])
}

// IndependentSpinMagnitudeBeta models the two spin magnitudes with separate
// Beta distributions.
// Hyper-parameters: alpha_chi_1, alpha_chi_2, beta_chi_1, beta_chi_2,
// amax_1, amax_2. Columns: a_1, a_2.
func IndependentSpinMagnitudeBeta(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params,
		"alpha_chi_1", "alpha_chi_2", "beta_chi_1", "beta_chi_2", "amax_1", "amax_2"); err != nil {
		return nil, err
	}
	return independentSpinMagnitudeBeta(d,
		params["alpha_chi_1"], params["alpha_chi_2"],
		params["beta_chi_1"], params["beta_chi_2"],
		params["amax_1"], params["amax_2"])
}

func independentSpinMagnitudeBeta(d *pop.Dataset, alpha1, alpha2, beta1, beta2, amax1, amax2 float64) ([]float64, error) {
	a1, err := d.Column("a_1")
	if err != nil {
		return nil, err
	}
	a2, err := d.Column("a_2")
	if err != nil {
		return nil, err
	}
	p1, err := stats.BetaDist(a1, alpha1, beta1, amax1)
	if err != nil {
		return nil, err
	}
	p2, err := stats.BetaDist(a2, alpha2, beta2, amax2)
	if err != nil {
		return nil, err
	}
	for i := range p1 {
		p1[i] *= p2[i]
	}
	return p1, nil
}

// IIDSpinOrientationGaussianIsotropic models both tilt cosines with the
// same mixture of an isotropic component and a truncated Gaussian peaked at
// alignment:
//
//	p(z1, z2 | xi, sigma) = (1-xi)/4
//	   + xi * prod_i N(z_i; mu=1, sigma, low=-1, high=1)
//
// Hyper-parameters: xi_spin, sigma_spin. Columns: cos_tilt_1, cos_tilt_2.
func IIDSpinOrientationGaussianIsotropic(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "xi_spin", "sigma_spin"); err != nil {
		return nil, err
	}
	return independentSpinOrientation(d, params["xi_spin"], params["sigma_spin"], params["sigma_spin"])
}

// IndependentSpinOrientationGaussianIsotropic is the orientation mixture
// with separate aligned-component widths for the two objects.
// Hyper-parameters: xi_spin, sigma_1, sigma_2. Columns: cos_tilt_1, cos_tilt_2.
func IndependentSpinOrientationGaussianIsotropic(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "xi_spin", "sigma_1", "sigma_2"); err != nil {
		return nil, err
	}
	return independentSpinOrientation(d, params["xi_spin"], params["sigma_1"], params["sigma_2"])
}

func independentSpinOrientation(d *pop.Dataset, xi, sigma1, sigma2 float64) ([]float64, error) {
	cos1, err := d.Column("cos_tilt_1")
	if err != nil {
		return nil, err
	}
	cos2, err := d.Column("cos_tilt_2")
	if err != nil {
		return nil, err
	}
	aligned1, err := stats.TruncNorm(cos1, 1, sigma1, 1, -1)
	if err != nil {
		return nil, err
	}
	aligned2, err := stats.TruncNorm(cos2, 1, sigma2, 1, -1)
	if err != nil {
		return nil, err
	}
	isotropic := (1 - xi) / 4
	out := make([]float64, len(cos1))
	for i := range out {
		out[i] = isotropic + xi*aligned1[i]*aligned2[i]
	}
	return out, nil
}

// GaussianChiEff models the aligned effective spin with a truncated
// Gaussian on [-1, 1].
// Hyper-parameters: mu_chi_eff, sigma_chi_eff. Column: chi_eff.
func GaussianChiEff(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "mu_chi_eff", "sigma_chi_eff"); err != nil {
		return nil, err
	}
	chiEff, err := d.Column("chi_eff")
	if err != nil {
		return nil, err
	}
	return stats.TruncNorm(chiEff, params["mu_chi_eff"], params["sigma_chi_eff"], 1, -1)
}

// GaussianChiP models the precessing effective spin with a truncated
// Gaussian on [0, 1].
// Hyper-parameters: mu_chi_p, sigma_chi_p. Column: chi_p.
func GaussianChiP(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "mu_chi_p", "sigma_chi_p"); err != nil {
		return nil, err
	}
	chiP, err := d.Column("chi_p")
	if err != nil {
		return nil, err
	}
	return stats.TruncNorm(chiP, params["mu_chi_p"], params["sigma_chi_p"], 1, 0)
}

// Quadrature grid for the covariant effective-spin normalisation.
const (
	chiEffGridSize = 500
	chiPGridSize   = 250
)

// GaussianChiEffChiP models chi_eff and chi_p with a covariant Gaussian.
// At rho == 0 it reduces to the separable product of GaussianChiEff and
// GaussianChiP; otherwise the joint density is normalised by quadrature on
// a chi_eff × chi_p grid and masked to the physical support.
// Hyper-parameters: mu_chi_eff, sigma_chi_eff, mu_chi_p, sigma_chi_p, rho.
// Columns: chi_eff, chi_p.
func GaussianChiEffChiP(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "mu_chi_eff", "sigma_chi_eff", "mu_chi_p", "sigma_chi_p", "rho"); err != nil {
		return nil, err
	}
	if params["rho"] == 0 {
		return productChiEffChiP(d, params, GaussianChiEff, GaussianChiP)
	}
	chiEff, err := d.Column("chi_eff")
	if err != nil {
		return nil, err
	}
	chiP, err := d.Column("chi_p")
	if err != nil {
		return nil, err
	}
	muEff, sigmaEff := params["mu_chi_eff"], params["sigma_chi_eff"]
	muP, sigmaP := params["mu_chi_p"], params["sigma_chi_p"]
	rho := params["rho"]

	prob := stats.Unnormalized2DGaussian(chiEff, chiP, muEff, muP, sigmaEff, sigmaP, rho)
	norm := chiEffChiPNorm(func(x, y []float64) []float64 {
		return stats.Unnormalized2DGaussian(x, y, muEff, muP, sigmaEff, sigmaP, rho)
	})
	maskChiEffChiP(prob, chiEff, chiP, norm)
	return prob, nil
}

// SkewGaussianChiEff adds a skew shape parameter to GaussianChiEff.
// Hyper-parameters: mu_chi_eff, sigma_chi_eff, skew_chi_eff. Column: chi_eff.
func SkewGaussianChiEff(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "mu_chi_eff", "sigma_chi_eff", "skew_chi_eff"); err != nil {
		return nil, err
	}
	chiEff, err := d.Column("chi_eff")
	if err != nil {
		return nil, err
	}
	return stats.TruncSkewNorm(chiEff, params["mu_chi_eff"], params["sigma_chi_eff"], params["skew_chi_eff"], 1, -1)
}

// SkewGaussianChiP adds a skew shape parameter to GaussianChiP.
// Hyper-parameters: mu_chi_p, sigma_chi_p, skew_chi_p. Column: chi_p.
func SkewGaussianChiP(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "mu_chi_p", "sigma_chi_p", "skew_chi_p"); err != nil {
		return nil, err
	}
	chiP, err := d.Column("chi_p")
	if err != nil {
		return nil, err
	}
	return stats.TruncSkewNorm(chiP, params["mu_chi_p"], params["sigma_chi_p"], params["skew_chi_p"], 1, 0)
}

// SkewGaussianChiEffChiP is the covariant effective-spin model with
// per-axis skew.
// Hyper-parameters: mu_chi_eff, sigma_chi_eff, mu_chi_p, sigma_chi_p,
// skew_chi_eff, skew_chi_p, rho. Columns: chi_eff, chi_p.
func SkewGaussianChiEffChiP(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params,
		"mu_chi_eff", "sigma_chi_eff", "mu_chi_p", "sigma_chi_p",
		"skew_chi_eff", "skew_chi_p", "rho"); err != nil {
		return nil, err
	}
	if params["rho"] == 0 {
		return productChiEffChiP(d, params, SkewGaussianChiEff, SkewGaussianChiP)
	}
	chiEff, err := d.Column("chi_eff")
	if err != nil {
		return nil, err
	}
	chiP, err := d.Column("chi_p")
	if err != nil {
		return nil, err
	}
	muEff, sigmaEff := params["mu_chi_eff"], params["sigma_chi_eff"]
	muP, sigmaP := params["mu_chi_p"], params["sigma_chi_p"]
	skewEff, skewP := params["skew_chi_eff"], params["skew_chi_p"]
	rho := params["rho"]

	prob := stats.Unnormalized2DSkewGaussian(chiEff, chiP, muEff, muP, sigmaEff, sigmaP, skewEff, skewP, rho)
	norm := chiEffChiPNorm(func(x, y []float64) []float64 {
		return stats.Unnormalized2DSkewGaussian(x, y, muEff, muP, sigmaEff, sigmaP, skewEff, skewP, rho)
	})
	maskChiEffChiP(prob, chiEff, chiP, norm)
	return prob, nil
}

// chiEffChiPNorm integrates an unnormalised joint kernel over the physical
// chi_eff × chi_p rectangle.
func chiEffChiPNorm(kernel func(x, y []float64) []float64) float64 {
	chiEffGrid := backend.Linspace(-1, 1, chiEffGridSize)
	chiPGrid := backend.Linspace(0, 1, chiPGridSize)
	rows := make([][]float64, chiPGridSize)
	for i, cp := range chiPGrid {
		ys := make([]float64, chiEffGridSize)
		for j := range ys {
			ys[j] = cp
		}
		rows[i] = kernel(chiEffGrid, ys)
	}
	return backend.Trapz2D(chiEffGrid, chiPGrid, rows)
}

// maskChiEffChiP divides by the normalisation and zeroes samples outside
// |chi_eff| <= 1, 0 <= chi_p <= 1.
func maskChiEffChiP(prob, chiEff, chiP []float64, norm float64) {
	for i := range prob {
		prob[i] /= norm
		if chiEff[i] < -1 || chiEff[i] > 1 || chiP[i] < 0 || chiP[i] > 1 {
			prob[i] = 0
		}
	}
}

func productChiEffChiP(d *pop.Dataset, params map[string]float64, effModel, pModel pop.ModelFunc) ([]float64, error) {
	eff, err := effModel(d, params)
	if err != nil {
		return nil, err
	}
	p, err := pModel(d, params)
	if err != nil {
		return nil, err
	}
	for i := range eff {
		eff[i] *= p[i]
	}
	return eff, nil
}
