package hyperpe

import (
	"fmt"
	"math"

	"github.com/gwpop/gwpop/pop/vt"
)

// RateLikelihood extends Likelihood with an astrophysical merger rate:
// the Poisson term N ln(R·ε) − R·ε replaces the pure selection division,
// where ε is the detection efficiency and R the "rate" hyper-parameter.
type RateLikelihood struct {
	base      *Likelihood
	selection vt.Estimator
}

// NewRate builds a RateLikelihood. A selection estimator is mandatory: the
// rate is only measurable against a known sensitivity. The estimator is
// held on the wrapper so the base likelihood never applies the plain
// 1/ε^N correction.
func NewRate(cfg Config) (*RateLikelihood, error) {
	if cfg.Selection == nil {
		return nil, fmt.Errorf("rate likelihood requires a selection estimator")
	}
	selection := cfg.Selection
	cfg.Selection = nil
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &RateLikelihood{base: base, selection: selection}, nil
}

// LogLikelihood evaluates the rate-resolved population log-likelihood.
// params must include "rate" in the volume-time units of the selection
// estimator.
func (r *RateLikelihood) LogLikelihood(params map[string]float64) (float64, error) {
	rate, ok := params["rate"]
	if !ok {
		return 0, fmt.Errorf("rate likelihood requires hyper-parameter \"rate\"")
	}
	if rate <= 0 {
		return math.Inf(-1), nil
	}

	lnl, _, err := r.base.LogLikelihoodAndVariance(params)
	if err != nil {
		return 0, err
	}
	if math.IsInf(lnl, -1) {
		return lnl, nil
	}

	converted, err := r.base.prepare(params)
	if err != nil {
		return 0, err
	}
	sel, err := r.selection.Efficiency(converted)
	if err != nil {
		return 0, err
	}
	if sel.Efficiency <= 0 || !vt.CheckEffectiveSamples(sel, r.base.NEvents()) {
		return math.Inf(-1), nil
	}

	n := float64(r.base.NEvents())
	expected := rate * sel.Efficiency
	return lnl + n*math.Log(expected) - expected, nil
}

// NEvents returns the catalog size.
func (r *RateLikelihood) NEvents() int { return r.base.NEvents() }
