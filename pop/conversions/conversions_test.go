package conversions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetaParamsFromMeanVariance_RoundTrip(t *testing.T) {
	alpha, beta, err := BetaParamsFromMeanVariance(0.3, 0.02, 1)
	require.NoError(t, err)

	// Recover the moments from the shapes.
	mean := alpha / (alpha + beta)
	variance := alpha * beta / ((alpha + beta) * (alpha + beta) * (alpha + beta + 1))
	assert.InDelta(t, 0.3, mean, 1e-12)
	assert.InDelta(t, 0.02, variance, 1e-12)
}

func TestBetaParamsFromMeanVariance_ScaledSupport(t *testing.T) {
	amax := 0.8
	alpha, beta, err := BetaParamsFromMeanVariance(0.24, 0.0128, amax)
	require.NoError(t, err)

	mean := alpha / (alpha + beta) * amax
	assert.InDelta(t, 0.24, mean, 1e-12)
}

func TestBetaParamsFromMeanVariance_RejectsImpossibleMoments(t *testing.T) {
	// Variance too large for the mean on [0, 1].
	_, _, err := BetaParamsFromMeanVariance(0.5, 0.5, 1)
	assert.Error(t, err)

	_, _, err = BetaParamsFromMeanVariance(1.2, 0.01, 1)
	assert.Error(t, err)

	_, _, err = BetaParamsFromMeanVariance(0.5, -0.1, 1)
	assert.Error(t, err)

	_, _, err = BetaParamsFromMeanVariance(0.5, 0.01, 0)
	assert.Error(t, err)
}

func TestToBetaParams_DerivesShapes(t *testing.T) {
	params := map[string]float64{"mu_chi": 0.3, "sigma_chi_sq": 0.02, "amax": 1}
	out, added, err := ToBetaParams(params)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha_chi", "beta_chi"}, added)
	assert.Greater(t, out["alpha_chi"], 0.0)
	assert.Greater(t, out["beta_chi"], 0.0)

	// Input map is untouched.
	_, ok := params["alpha_chi"]
	assert.False(t, ok)
}

func TestToBetaParams_PassthroughWhenShapesPresent(t *testing.T) {
	params := map[string]float64{"alpha_chi": 2, "beta_chi": 4, "mu_chi": 0.3, "sigma_chi_sq": 0.02}
	out, added, err := ToBetaParams(params)
	require.NoError(t, err)
	assert.Nil(t, added)
	assert.Equal(t, 2.0, out["alpha_chi"])
}

func TestChiEff_BoundedByUnity(t *testing.T) {
	a1 := []float64{1, 0.5}
	a2 := []float64{1, 0.2}
	cos1 := []float64{1, -0.3}
	cos2 := []float64{1, 0.7}
	q := []float64{1, 0.8}
	chiEff, err := ChiEff(a1, a2, cos1, cos2, q)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, chiEff[0], 1e-12)
	for _, v := range chiEff {
		assert.LessOrEqual(t, math.Abs(v), 1.0)
	}
}

func TestChiP_EqualMassAligned(t *testing.T) {
	// Aligned spins have no in-plane component.
	chiP, err := ChiP([]float64{0.9}, []float64{0.9}, []float64{1}, []float64{1}, []float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, chiP[0], 1e-12)

	// Fully in-plane primary spin dominates.
	chiP, err = ChiP([]float64{0.6}, []float64{0.1}, []float64{0}, []float64{0}, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, chiP[0], 1e-12)
}

func TestMassConversions(t *testing.T) {
	m1 := []float64{40}
	q := []float64{0.5}
	m2, err := SecondaryMass(m1, q)
	require.NoError(t, err)
	assert.Equal(t, 20.0, m2[0])

	total, err := TotalMass(m1, m2)
	require.NoError(t, err)
	assert.Equal(t, 60.0, total[0])

	eta, err := SymmetricMassRatio(m1, m2)
	require.NoError(t, err)
	assert.InDelta(t, 40.0*20.0/3600.0, eta[0], 1e-12)

	mc, err := ChirpMass(m1, m2)
	require.NoError(t, err)
	want := math.Pow(40*20, 0.6) / math.Pow(60, 0.2)
	assert.InDelta(t, want, mc[0], 1e-9)
}

func TestConversions_RejectMismatchedLengths(t *testing.T) {
	_, err := SecondaryMass([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = ChiEff([]float64{1}, []float64{1, 2}, []float64{1}, []float64{1}, []float64{1})
	assert.Error(t, err)
}
