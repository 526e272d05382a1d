// Package conversions maps between hyper-parameterisations and between
// source-frame parameters: mean/variance versus shape parameters of the
// spin-magnitude beta distribution, component spins versus effective spins,
// and the standard mass reparameterisations.
package conversions

import (
	"fmt"
	"math"
)

// BetaParamsFromMeanVariance returns the shape parameters (alpha, beta) of
// a beta distribution on [0, amax] with the requested mean and variance.
// An error is returned when the moments are incompatible with a beta
// distribution (either implied shape parameter non-positive).
func BetaParamsFromMeanVariance(mu, variance, amax float64) (float64, float64, error) {
	if amax <= 0 {
		return 0, 0, fmt.Errorf("beta conversion requires amax > 0, got %g", amax)
	}
	if variance <= 0 {
		return 0, 0, fmt.Errorf("beta conversion requires variance > 0, got %g", variance)
	}
	m := mu / amax
	v := variance / (amax * amax)
	if m <= 0 || m >= 1 {
		return 0, 0, fmt.Errorf("beta conversion requires 0 < mu < amax, got mu=%g amax=%g", mu, amax)
	}
	k := m*(1-m)/v - 1
	alpha := m * k
	beta := (1 - m) * k
	if alpha <= 0 || beta <= 0 {
		return 0, 0, fmt.Errorf("mean %g and variance %g imply non-positive beta shapes (alpha=%g, beta=%g)", mu, variance, alpha, beta)
	}
	return alpha, beta, nil
}

// ToBetaParams copies params and, when the spin magnitude distribution is
// specified through mu_chi and sigma_chi_sq, fills in the derived alpha_chi
// and beta_chi. Existing alpha_chi/beta_chi entries are left untouched.
// The added key names are returned so callers can strip derived entries
// from stored output.
func ToBetaParams(params map[string]float64) (map[string]float64, []string, error) {
	out := make(map[string]float64, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	_, hasAlpha := out["alpha_chi"]
	_, hasBeta := out["beta_chi"]
	if hasAlpha && hasBeta {
		return out, nil, nil
	}
	mu, hasMu := out["mu_chi"]
	sigmaSq, hasSigma := out["sigma_chi_sq"]
	if !hasMu || !hasSigma {
		return out, nil, nil
	}
	amax, ok := out["amax"]
	if !ok {
		amax = 1
	}
	alpha, beta, err := ToBetaShapes(mu, sigmaSq, amax)
	if err != nil {
		return nil, nil, err
	}
	out["alpha_chi"] = alpha
	out["beta_chi"] = beta
	return out, []string{"alpha_chi", "beta_chi"}, nil
}

// ToBetaShapes is BetaParamsFromMeanVariance under the name used by the
// conversion hook wiring.
func ToBetaShapes(mu, variance, amax float64) (float64, float64, error) {
	return BetaParamsFromMeanVariance(mu, variance, amax)
}

// ChiEff returns the mass-weighted aligned effective spin for component
// spin magnitudes a1, a2, tilt cosines cos1, cos2, and mass ratio q.
func ChiEff(a1, a2, cos1, cos2, q []float64) ([]float64, error) {
	if err := sameLength("chi_eff", len(a1), len(a2), len(cos1), len(cos2), len(q)); err != nil {
		return nil, err
	}
	out := make([]float64, len(a1))
	for i := range a1 {
		out[i] = (a1[i]*cos1[i] + q[i]*a2[i]*cos2[i]) / (1 + q[i])
	}
	return out, nil
}

// ChiP returns the precessing effective spin for component spin magnitudes
// a1, a2, tilt cosines cos1, cos2, and mass ratio q.
func ChiP(a1, a2, cos1, cos2, q []float64) ([]float64, error) {
	if err := sameLength("chi_p", len(a1), len(a2), len(cos1), len(cos2), len(q)); err != nil {
		return nil, err
	}
	out := make([]float64, len(a1))
	for i := range a1 {
		sin1 := math.Sqrt(math.Max(0, 1-cos1[i]*cos1[i]))
		sin2 := math.Sqrt(math.Max(0, 1-cos2[i]*cos2[i]))
		secondary := (4*q[i] + 3) / (4 + 3*q[i]) * q[i] * a2[i] * sin2
		out[i] = math.Max(a1[i]*sin1, secondary)
	}
	return out, nil
}

// SecondaryMass returns m2 = q * m1 elementwise.
func SecondaryMass(m1, q []float64) ([]float64, error) {
	if err := sameLength("secondary mass", len(m1), len(q)); err != nil {
		return nil, err
	}
	out := make([]float64, len(m1))
	for i := range m1 {
		out[i] = q[i] * m1[i]
	}
	return out, nil
}

// TotalMass returns m1 + m2 elementwise.
func TotalMass(m1, m2 []float64) ([]float64, error) {
	if err := sameLength("total mass", len(m1), len(m2)); err != nil {
		return nil, err
	}
	out := make([]float64, len(m1))
	for i := range m1 {
		out[i] = m1[i] + m2[i]
	}
	return out, nil
}

// ChirpMass returns (m1 m2)^(3/5) / (m1 + m2)^(1/5) elementwise.
func ChirpMass(m1, m2 []float64) ([]float64, error) {
	if err := sameLength("chirp mass", len(m1), len(m2)); err != nil {
		return nil, err
	}
	out := make([]float64, len(m1))
	for i := range m1 {
		out[i] = math.Pow(m1[i]*m2[i], 0.6) / math.Pow(m1[i]+m2[i], 0.2)
	}
	return out, nil
}

// SymmetricMassRatio returns m1 m2 / (m1 + m2)^2 elementwise.
func SymmetricMassRatio(m1, m2 []float64) ([]float64, error) {
	if err := sameLength("symmetric mass ratio", len(m1), len(m2)); err != nil {
		return nil, err
	}
	out := make([]float64, len(m1))
	for i := range m1 {
		total := m1[i] + m2[i]
		out[i] = m1[i] * m2[i] / (total * total)
	}
	return out, nil
}

func sameLength(what string, lengths ...int) error {
	for _, l := range lengths[1:] {
		if l != lengths[0] {
			return fmt.Errorf("%s conversion requires equal-length inputs, got %v", what, lengths)
		}
	}
	return nil
}
