// Package stats provides the vectorised probability densities the
// population models are assembled from: truncated and skew normals, scaled
// beta distributions, truncated power laws, and unnormalised covariant
// Gaussian kernels.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gwpop/gwpop/pop/backend"
)

const sqrt2 = math.Sqrt2

// TruncNorm evaluates a normal density with mean mu and width sigma,
// truncated to [low, high]. Entries outside the support get zero.
func TruncNorm(x []float64, mu, sigma, high, low float64) ([]float64, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("truncated normal requires sigma > 0, got %g", sigma)
	}
	if high <= low {
		return nil, fmt.Errorf("truncated normal requires high > low, got [%g, %g]", low, high)
	}
	norm := 2.0 / sigma / math.Sqrt(2*math.Pi) /
		(math.Erf((high-mu)/(sqrt2*sigma)) + math.Erf((mu-low)/(sqrt2*sigma)))
	out := make([]float64, len(x))
	for i, xi := range x {
		if xi < low || xi > high {
			continue
		}
		z := (xi - mu) / sigma
		out[i] = norm * math.Exp(-0.5*z*z)
	}
	return out, nil
}

// TruncSkewNorm evaluates a skew-normal density (shape parameter alpha)
// truncated to [low, high]. The truncation normalisation has no closed
// form and is computed by quadrature on a fixed grid.
func TruncSkewNorm(x []float64, mu, sigma, alpha, high, low float64) ([]float64, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("truncated skew normal requires sigma > 0, got %g", sigma)
	}
	if high <= low {
		return nil, fmt.Errorf("truncated skew normal requires high > low, got [%g, %g]", low, high)
	}
	kernel := func(xi float64) float64 {
		z := (xi - mu) / sigma
		return math.Exp(-0.5*z*z) * (1 + math.Erf(alpha*z/sqrt2))
	}
	grid := backend.Linspace(low, high, skewNormGridSize)
	kg := make([]float64, len(grid))
	for i, g := range grid {
		kg[i] = kernel(g)
	}
	norm := backend.Trapz(grid, kg)
	if norm <= 0 {
		return nil, fmt.Errorf("truncated skew normal has vanishing support on [%g, %g]", low, high)
	}
	out := make([]float64, len(x))
	for i, xi := range x {
		if xi < low || xi > high {
			continue
		}
		out[i] = kernel(xi) / norm
	}
	return out, nil
}

const skewNormGridSize = 1000

// BetaDist evaluates a beta density with shape parameters alpha and beta,
// stretched to the interval [0, scale].
func BetaDist(x []float64, alpha, beta, scale float64) ([]float64, error) {
	if alpha <= 0 || beta <= 0 {
		return nil, fmt.Errorf("beta distribution requires positive shape parameters, got alpha=%g beta=%g", alpha, beta)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("beta distribution requires scale > 0, got %g", scale)
	}
	dist := distuv.Beta{Alpha: alpha, Beta: beta}
	out := make([]float64, len(x))
	for i, xi := range x {
		if xi < 0 || xi > scale {
			continue
		}
		out[i] = dist.Prob(xi/scale) / scale
	}
	return out, nil
}

// PowerLaw evaluates a power-law density x^alpha truncated to [low, high].
// The alpha == -1 case uses the logarithmic normalisation branch.
func PowerLaw(x []float64, alpha, high, low float64) ([]float64, error) {
	if low <= 0 {
		return nil, fmt.Errorf("power law requires low > 0, got %g", low)
	}
	if high <= low {
		return nil, fmt.Errorf("power law requires high > low, got [%g, %g]", low, high)
	}
	var norm float64
	if alpha == -1 {
		norm = 1 / math.Log(high/low)
	} else {
		norm = (1 + alpha) / (math.Pow(high, 1+alpha) - math.Pow(low, 1+alpha))
	}
	out := make([]float64, len(x))
	for i, xi := range x {
		if xi < low || xi > high {
			continue
		}
		out[i] = norm * math.Pow(xi, alpha)
	}
	return out, nil
}

// Unnormalized2DGaussian evaluates the covariant Gaussian kernel at paired
// points (x[i], y[i]) with correlation rho. The caller normalises.
func Unnormalized2DGaussian(x, y []float64, muX, muY, sigmaX, sigmaY, rho float64) []float64 {
	out := make([]float64, len(x))
	oneMinusRho2 := 1 - rho*rho
	for i := range x {
		u := (x[i] - muX) / sigmaX
		v := (y[i] - muY) / sigmaY
		out[i] = math.Exp(-(u*u + v*v - 2*rho*u*v) / (2 * oneMinusRho2))
	}
	return out
}

// Unnormalized2DSkewGaussian is Unnormalized2DGaussian with marginal skew
// factors alphaX and alphaY applied to each axis.
func Unnormalized2DSkewGaussian(x, y []float64, muX, muY, sigmaX, sigmaY, alphaX, alphaY, rho float64) []float64 {
	out := Unnormalized2DGaussian(x, y, muX, muY, sigmaX, sigmaY, rho)
	for i := range out {
		u := (x[i] - muX) / sigmaX
		v := (y[i] - muY) / sigmaY
		out[i] *= (1 + math.Erf(alphaX*u/sqrt2)) * (1 + math.Erf(alphaY*v/sqrt2))
	}
	return out
}
