package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
)

// Planck-15 flat Lambda-CDM parameters.
const (
	hubbleConstant = 67.74   // km/s/Mpc
	omegaMatter    = 0.3075
	speedOfLight   = 299792.458 // km/s
)

// PowerLawRedshift models the merger redshift distribution as comoving
// volume weighted by a power-law rate evolution:
//
//	p(z | lamb) ∝ dVc/dz (1+z)^(lamb-1)
//
// where the (1+z)^-1 converts source-frame to detector-frame rate. The
// comoving volume element follows flat Lambda-CDM with Planck-15
// parameters, precomputed on a fixed redshift grid at construction.
//
// Hyper-parameter: lamb. Column: redshift.
type PowerLawRedshift struct {
	zMax   float64
	zGrid  []float64
	dvcDz  []float64
	interp interp.PiecewiseLinear
}

// NewPowerLawRedshift builds a PowerLawRedshift from spec options z_max
// (default 2.3) and grid_points (default 1000).
func NewPowerLawRedshift(spec pop.Spec) (pop.Model, error) {
	zMax := option(spec, "z_max", 2.3)
	gridPoints := int(option(spec, "grid_points", 1000))
	if zMax <= 0 {
		return nil, fmt.Errorf("power_law_redshift requires z_max > 0, got %g", zMax)
	}
	if gridPoints < 2 {
		return nil, fmt.Errorf("power_law_redshift requires at least 2 grid points")
	}

	zGrid := backend.Linspace(0, zMax, gridPoints)
	hubbleDistance := speedOfLight / hubbleConstant // Mpc

	invE := make([]float64, gridPoints)
	eOfZ := make([]float64, gridPoints)
	for i, z := range zGrid {
		e := math.Sqrt(omegaMatter*math.Pow(1+z, 3) + (1 - omegaMatter))
		eOfZ[i] = e
		invE[i] = 1 / e
	}
	comoving := backend.CumTrapz(zGrid, invE) // units of hubbleDistance

	dvcDz := make([]float64, gridPoints)
	for i := range zGrid {
		dc := hubbleDistance * comoving[i]
		// Mpc^3 -> Gpc^3
		dvcDz[i] = 4 * math.Pi * hubbleDistance * dc * dc / eOfZ[i] * 1e-9
	}

	m := &PowerLawRedshift{zMax: zMax, zGrid: zGrid, dvcDz: dvcDz}
	if err := m.interp.Fit(zGrid, dvcDz); err != nil {
		return nil, fmt.Errorf("fitting comoving volume grid: %w", err)
	}
	return m, nil
}

func (m *PowerLawRedshift) Prob(d *pop.Dataset, params map[string]float64) ([]float64, error) {
	if err := pop.RequireParams(params, "lamb"); err != nil {
		return nil, err
	}
	z, err := d.Column("redshift")
	if err != nil {
		return nil, err
	}
	lamb := params["lamb"]

	gridPsi := make([]float64, len(m.zGrid))
	for i, zi := range m.zGrid {
		gridPsi[i] = m.dvcDz[i] * math.Pow(1+zi, lamb-1)
	}
	norm := backend.Trapz(m.zGrid, gridPsi)
	if norm <= 0 {
		return nil, fmt.Errorf("redshift normalisation vanished with lamb=%g", lamb)
	}

	out := make([]float64, len(z))
	for i, zi := range z {
		if zi < 0 || zi > m.zMax {
			continue
		}
		out[i] = m.interp.Predict(zi) * math.Pow(1+zi, lamb-1) / norm
	}
	return out, nil
}

// TotalVolume returns the rate-weighted four-volume normalisation
// integral of dVc/dz (1+z)^(lamb-1) over [0, z_max], in Gpc^3.
func (m *PowerLawRedshift) TotalVolume(lamb float64) float64 {
	gridPsi := make([]float64, len(m.zGrid))
	for i, zi := range m.zGrid {
		gridPsi[i] = m.dvcDz[i] * math.Pow(1+zi, lamb-1)
	}
	return backend.Trapz(m.zGrid, gridPsi)
}
