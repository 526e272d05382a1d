// register.go wires the model constructors into the pop package's registry.
// This init() runs when any package imports pop/models, so the CLI and the
// likelihood engine build models purely by name.
package models

import "github.com/gwpop/gwpop/pop"

// plain adapts a parameter-free model function to a registry constructor.
func plain(f pop.ModelFunc) pop.Constructor {
	return func(pop.Spec) (pop.Model, error) { return f, nil }
}

func init() {
	pop.RegisterModel("iid_spin", plain(IIDSpin))
	pop.RegisterModel("iid_spin_magnitude_beta", plain(IIDSpinMagnitudeBeta))
	pop.RegisterModel("independent_spin_magnitude_beta", plain(IndependentSpinMagnitudeBeta))
	pop.RegisterModel("iid_spin_orientation_gaussian_isotropic", plain(IIDSpinOrientationGaussianIsotropic))
	pop.RegisterModel("independent_spin_orientation_gaussian_isotropic", plain(IndependentSpinOrientationGaussianIsotropic))
	pop.RegisterModel("gaussian_chi_eff", plain(GaussianChiEff))
	pop.RegisterModel("gaussian_chi_p", plain(GaussianChiP))
	pop.RegisterModel("gaussian_chi_eff_chi_p", plain(GaussianChiEffChiP))
	pop.RegisterModel("skew_gaussian_chi_eff", plain(SkewGaussianChiEff))
	pop.RegisterModel("skew_gaussian_chi_p", plain(SkewGaussianChiP))
	pop.RegisterModel("skew_gaussian_chi_eff_chi_p", plain(SkewGaussianChiEffChiP))
	pop.RegisterModel("power_law_primary_mass_ratio", plain(PowerLawPrimaryMassRatio))
	pop.RegisterModel("power_law_plus_peak", NewPowerLawPlusPeak)
	pop.RegisterModel("power_law_redshift", NewPowerLawRedshift)
	pop.RegisterModel("spline_spin_magnitude_identical", NewSplineSpinMagnitudeIdentical)
	pop.RegisterModel("spline_spin_tilt_identical", NewSplineSpinTiltIdentical)
}
