package vt

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/gwpop/gwpop/pop"
)

// Injection estimates detection efficiency by importance-resampling a
// found-injection campaign: the mean over found injections of
// p_pop(θ|Λ) / p_draw(θ), normalised by the total number of injections
// performed (found or not).
type Injection struct {
	model      pop.Model
	injections *pop.Dataset
	prior      []float64
	total      float64
}

// NewInjection builds an Injection estimator. The injection Dataset must
// carry a "prior" column with the draw density of each found injection;
// total is the full number of injections performed and must be at least the
// number of found injections.
func NewInjection(model pop.Model, injections *pop.Dataset, total float64) (*Injection, error) {
	prior, err := injections.Column("prior")
	if err != nil {
		return nil, fmt.Errorf("injection set: %w", err)
	}
	if total < float64(injections.Len()) {
		return nil, fmt.Errorf("total injections %g is less than the %d found injections", total, injections.Len())
	}
	for i, p := range prior {
		if p <= 0 {
			return nil, fmt.Errorf("injection %d has non-positive draw density %g", i, p)
		}
	}
	return &Injection{model: model, injections: injections, prior: prior, total: total}, nil
}

// Found returns the number of found injections in the campaign.
func (v *Injection) Found() int { return v.injections.Len() }

func (v *Injection) Efficiency(params map[string]float64) (Result, error) {
	prob, err := v.model.Prob(v.injections, params)
	if err != nil {
		return Result{}, err
	}
	var sum, sumSq float64
	for i, p := range prob {
		w := p / v.prior[i]
		sum += w
		sumSq += w * w
	}
	mu := sum / v.total
	if mu <= 0 || math.IsNaN(mu) {
		return Result{Efficiency: 0, Variance: 0, EffectiveSamples: 0}, nil
	}
	variance := sumSq/(v.total*v.total) - mu*mu/v.total
	ess := mu * mu / variance
	if variance <= 0 {
		ess = v.total
	}
	return Result{Efficiency: mu, Variance: variance, EffectiveSamples: ess}, nil
}

// CheckEffectiveSamples warns when the efficiency estimate rests on fewer
// effective injections than the conventional 4-per-event threshold. The
// caller decides whether to reject the point.
func CheckEffectiveSamples(r Result, nEvents int) bool {
	threshold := 4 * float64(nEvents)
	if r.EffectiveSamples < threshold {
		logrus.Warnf("selection estimate has %.1f effective samples, below threshold %.0f; treating hyper-parameters as unsupported",
			r.EffectiveSamples, threshold)
		return false
	}
	return true
}

// LoadInjections reads a found-injection campaign from a headed CSV with a
// "prior" column.
func LoadInjections(path string) (*pop.Dataset, error) {
	d, err := pop.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	if !d.Has("prior") {
		return nil, fmt.Errorf("injection file %s has no \"prior\" column", path)
	}
	return d, nil
}
