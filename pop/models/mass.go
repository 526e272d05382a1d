package models

import (
	"fmt"
	"math"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
	"github.com/gwpop/gwpop/pop/stats"
)

// PowerLawPrimaryMassRatio models the primary mass with a truncated power
// law m1^-alpha on [mmin, mmax] and the mass ratio with a power law q^beta
// on [mmin/m1, 1].
// Hyper-parameters: alpha, beta, mmin, mmax. Columns: mass_1, mass_ratio.
func PowerLawPrimaryMassRatio(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "alpha", "beta", "mmin", "mmax"); err != nil {
		return nil, err
	}
	m1, err := d.Column("mass_1")
	if err != nil {
		return nil, err
	}
	q, err := d.Column("mass_ratio")
	if err != nil {
		return nil, err
	}
	alpha, beta := params["alpha"], params["beta"]
	mmin, mmax := params["mmin"], params["mmax"]

	pm1, err := stats.PowerLaw(m1, -alpha, mmax, mmin)
	if err != nil {
		return nil, err
	}
	for i := range pm1 {
		if pm1[i] == 0 {
			continue
		}
		pm1[i] *= powerLawPoint(q[i], beta, 1, mmin/m1[i])
	}
	return pm1, nil
}

// powerLawPoint is the scalar truncated power law used for per-sample
// conditional densities where the bounds vary row by row.
func powerLawPoint(x, alpha, high, low float64) float64 {
	if x < low || x > high || low >= high || low <= 0 {
		return 0
	}
	var norm float64
	if alpha == -1 {
		norm = 1 / math.Log(high/low)
	} else {
		norm = (1 + alpha) / (math.Pow(high, 1+alpha) - math.Pow(low, 1+alpha))
	}
	return norm * math.Pow(x, alpha)
}

// smoothing is the low-mass turn-on window: zero below mmin, unity above
// mmin+delta, with a smooth rise in between. delta == 0 degenerates to a
// step at mmin.
func smoothing(m, mmin, delta float64) float64 {
	if m < mmin {
		return 0
	}
	if delta == 0 || m >= mmin+delta {
		return 1
	}
	if m == mmin {
		return 0
	}
	exponent := delta/(m-mmin) + delta/(m-mmin-delta)
	return 1 / (math.Exp(exponent) + 1)
}

// PowerLawPlusPeak is the smoothed two-component primary mass spectrum:
// a truncated power law plus a Gaussian peak, both damped by the low-mass
// smoothing window, with a smoothed power-law mass ratio.
//
// Hyper-parameters: alpha, beta, mmin, mmax, lam (peak fraction),
// mpp (peak location), sigpp (peak width), delta_m (window width).
// Columns: mass_1, mass_ratio.
//
// Normalisations are quadratures over fixed grids configured at
// construction; the default grid covers primary masses in [2, 300].
type PowerLawPlusPeak struct {
	m1Grid   []float64
	qGrid    []float64
	gaussMax float64
}

// NewPowerLawPlusPeak builds a PowerLawPlusPeak from spec options
// grid_min, grid_max, grid_points, q_points, gaussian_mass_maximum
// (all optional).
func NewPowerLawPlusPeak(spec pop.Spec) (pop.Model, error) {
	gridMin := option(spec, "grid_min", 2)
	gridMax := option(spec, "grid_max", 300)
	gridPoints := int(option(spec, "grid_points", 1000))
	qPoints := int(option(spec, "q_points", 500))
	gaussMax := option(spec, "gaussian_mass_maximum", 100)
	if gridMin <= 0 || gridMax <= gridMin {
		return nil, fmt.Errorf("power_law_plus_peak requires 0 < grid_min < grid_max, got [%g, %g]", gridMin, gridMax)
	}
	if gridPoints < 2 || qPoints < 2 {
		return nil, fmt.Errorf("power_law_plus_peak requires at least 2 grid points per axis")
	}
	return &PowerLawPlusPeak{
		m1Grid:   backend.Linspace(gridMin, gridMax, gridPoints),
		qGrid:    backend.Linspace(1e-3, 1, qPoints),
		gaussMax: gaussMax,
	}, nil
}

func (p *PowerLawPlusPeak) Prob(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "alpha", "beta", "mmin", "mmax", "lam", "mpp", "sigpp", "delta_m"); err != nil {
		return nil, err
	}
	m1, err := d.Column("mass_1")
	if err != nil {
		return nil, err
	}
	q, err := d.Column("mass_ratio")
	if err != nil {
		return nil, err
	}

	pm1, err := p.primaryProb(m1, params)
	if err != nil {
		return nil, err
	}
	pq := p.massRatioProb(m1, q, params)
	for i := range pm1 {
		pm1[i] *= pq[i]
	}
	return pm1, nil
}

// primaryProb evaluates the normalised smoothed two-component p(m1).
func (p *PowerLawPlusPeak) primaryProb(m1 []float64, params map[string]float64) ([]float64, error) {
	unnorm, err := p.primaryUnnormalized(m1, params)
	if err != nil {
		return nil, err
	}
	gridVals, err := p.primaryUnnormalized(p.m1Grid, params)
	if err != nil {
		return nil, err
	}
	norm := backend.Trapz(p.m1Grid, gridVals)
	if norm <= 0 {
		for i := range unnorm {
			unnorm[i] = 0
		}
		return unnorm, nil
	}
	for i := range unnorm {
		unnorm[i] /= norm
	}
	return unnorm, nil
}

func (p *PowerLawPlusPeak) primaryUnnormalized(m1 []float64, params map[string]float64) ([]float64, error) {
	alpha, mmin, mmax := params["alpha"], params["mmin"], params["mmax"]
	lam, mpp, sigpp := params["lam"], params["mpp"], params["sigpp"]
	deltaM := params["delta_m"]

	pPow, err := stats.PowerLaw(m1, -alpha, mmax, mmin)
	if err != nil {
		return nil, err
	}
	pPeak, err := stats.TruncNorm(m1, mpp, sigpp, p.gaussMax, mmin)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(m1))
	for i := range m1 {
		out[i] = ((1-lam)*pPow[i] + lam*pPeak[i]) * smoothing(m1[i], mmin, deltaM)
	}
	return out, nil
}

// massRatioProb evaluates p(q | m1) = q^beta S(q m1) with a per-sample
// quadrature normalisation over the q grid.
func (p *PowerLawPlusPeak) massRatioProb(m1, q []float64, params map[string]float64) []float64 {
	beta, mmin, deltaM := params["beta"], params["mmin"], params["delta_m"]
	integrand := make([]float64, len(p.qGrid))
	out := make([]float64, len(q))
	for i := range q {
		if q[i] <= 0 || q[i] > 1 {
			continue
		}
		for j, qj := range p.qGrid {
			integrand[j] = math.Pow(qj, beta) * smoothing(qj*m1[i], mmin, deltaM)
		}
		norm := backend.Trapz(p.qGrid, integrand)
		if norm <= 0 {
			continue
		}
		out[i] = math.Pow(q[i], beta) * smoothing(q[i]*m1[i], mmin, deltaM) / norm
	}
	return out
}

// option reads a constructor option with a default.
func option(spec pop.Spec, key string, def float64) float64 {
	if v, ok := spec.Options[key]; ok {
		return v
	}
	return def
}
