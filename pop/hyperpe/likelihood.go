// Package hyperpe implements the hierarchical population likelihood: the
// per-event Monte Carlo average of population model over sampling prior,
// combined across the catalog and corrected for selection effects.
package hyperpe

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
	"github.com/gwpop/gwpop/pop/vt"
)

// Conversion derives dependent hyper-parameters before model evaluation
// (e.g. mean/variance to beta shape parameters). It returns the augmented
// map and the names of any keys it added.
type Conversion func(params map[string]float64) (map[string]float64, []string, error)

// Config assembles a Likelihood.
type Config struct {
	// Posteriors holds one sample table per event; each must carry a
	// "prior" column with the sampling prior density of every sample.
	Posteriors []*pop.Dataset
	// Model is the population model p(θ|Λ).
	Model pop.Model
	// Selection corrects for detection bias; nil means no correction.
	Selection vt.Estimator
	// Conversion optionally derives dependent hyper-parameters; nil means
	// params are passed through unchanged.
	Conversion Conversion
	// MaxSamples truncates every event to at most this many samples
	// (0 = use all). Equalised sample counts keep per-event Monte Carlo
	// noise comparable.
	MaxSamples int
	// Workers bounds the parallel fan-out across events (0 = GOMAXPROCS).
	Workers int
}

// Likelihood is the hierarchical population log-likelihood. Safe for
// concurrent LogLikelihood calls as long as the Model is.
type Likelihood struct {
	posteriors []*pop.Dataset
	priors     [][]float64
	model      pop.Model
	selection  vt.Estimator
	conversion Conversion
	workers    int
}

// New validates the configuration and builds a Likelihood.
func New(cfg Config) (*Likelihood, error) {
	if len(cfg.Posteriors) == 0 {
		return nil, fmt.Errorf("likelihood requires at least one event")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("likelihood requires a population model")
	}
	posteriors := make([]*pop.Dataset, len(cfg.Posteriors))
	priors := make([][]float64, len(cfg.Posteriors))
	for i, d := range cfg.Posteriors {
		if cfg.MaxSamples > 0 {
			d = d.Truncate(cfg.MaxSamples)
		}
		prior, err := d.Column("prior")
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		for j, p := range prior {
			if p <= 0 {
				return nil, fmt.Errorf("event %d sample %d has non-positive prior density %g", i, j, p)
			}
		}
		posteriors[i] = d
		priors[i] = prior
	}
	logrus.Debugf("likelihood over %d events, %d samples for event 0", len(posteriors), posteriors[0].Len())
	return &Likelihood{
		posteriors: posteriors,
		priors:     priors,
		model:      cfg.Model,
		selection:  cfg.Selection,
		conversion: cfg.Conversion,
		workers:    cfg.Workers,
	}, nil
}

// NEvents returns the catalog size.
func (l *Likelihood) NEvents() int { return len(l.posteriors) }

// eventTerm holds one event's contribution: the log of the Monte Carlo
// mean of model/prior and the variance of that log.
type eventTerm struct {
	lnMean   float64
	variance float64
}

func (l *Likelihood) evalEvent(i int, params map[string]float64) (eventTerm, error) {
	prob, err := l.model.Prob(l.posteriors[i], params)
	if err != nil {
		return eventTerm{}, fmt.Errorf("event %d: %w", i, err)
	}
	n := float64(len(prob))
	var sum, sumSq float64
	for j, p := range prob {
		w := p / l.priors[i][j]
		sum += w
		sumSq += w * w
	}
	mean := sum / n
	if mean <= 0 || math.IsNaN(mean) {
		return eventTerm{lnMean: math.Inf(-1)}, nil
	}
	// Relative variance of the MC mean, which is the variance of ln(mean).
	variance := (sumSq/(n*n) - mean*mean/n) / (mean * mean)
	return eventTerm{lnMean: math.Log(mean), variance: variance}, nil
}

// prepare applies the conversion hook and rejects non-finite inputs.
func (l *Likelihood) prepare(params map[string]float64) (map[string]float64, error) {
	for k, v := range params {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("hyper-parameter %q is NaN", k)
		}
	}
	if l.conversion == nil {
		return params, nil
	}
	converted, _, err := l.conversion(params)
	if err != nil {
		return nil, err
	}
	return converted, nil
}

// LogLikelihood evaluates the population log-likelihood at the given
// hyper-parameters. Hyper-parameter values in dead regions of parameter
// space yield -Inf rather than an error.
func (l *Likelihood) LogLikelihood(params map[string]float64) (float64, error) {
	lnl, _, err := l.LogLikelihoodAndVariance(params)
	return lnl, err
}

// LogLikelihoodAndVariance additionally returns the Monte Carlo variance of
// the log-likelihood estimate (per-event sampling noise plus selection
// noise).
func (l *Likelihood) LogLikelihoodAndVariance(params map[string]float64) (float64, float64, error) {
	converted, err := l.prepare(params)
	if err != nil {
		return 0, 0, err
	}

	terms := make([]eventTerm, len(l.posteriors))
	err = backend.ParallelFor(l.workers, len(l.posteriors), func(i int) error {
		term, err := l.evalEvent(i, converted)
		if err != nil {
			return err
		}
		terms[i] = term
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	var lnl, variance float64
	for _, t := range terms {
		lnl += t.lnMean
		variance += t.variance
	}
	if math.IsInf(lnl, -1) {
		return math.Inf(-1), variance, nil
	}

	if l.selection != nil {
		sel, err := l.selection.Efficiency(converted)
		if err != nil {
			return 0, 0, err
		}
		n := float64(l.NEvents())
		if sel.Efficiency <= 0 || !vt.CheckEffectiveSamples(sel, l.NEvents()) {
			return math.Inf(-1), variance, nil
		}
		lnl -= n * math.Log(sel.Efficiency)
		variance += n * n * sel.Variance / (sel.Efficiency * sel.Efficiency)
	}
	return lnl, variance, nil
}
