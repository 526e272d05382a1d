package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/gwpop/gwpop/pop"
)

// Target is a log-likelihood over named hyper-parameters.
type Target func(params map[string]float64) (float64, error)

// Config controls a Metropolis run.
type Config struct {
	Steps    int // post-burn-in steps to store
	Burnin   int // adaptation steps, discarded
	LogEvery int // progress log cadence in steps (0 = no progress logs)
}

const (
	targetAcceptance = 0.234
	adaptWindow      = 50
)

// Validate applies defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("sampler requires steps > 0, got %d", c.Steps)
	}
	if c.Burnin < 0 {
		return fmt.Errorf("sampler requires burnin >= 0, got %d", c.Burnin)
	}
	return nil
}

// Run samples the hyper-posterior with adaptive random-walk Metropolis.
// Per-parameter proposal scales adapt toward the usual 0.234 acceptance
// during burn-in and stay frozen afterwards, keeping the stored chain a
// valid Markov chain. Fixed priors pin their parameters without proposing
// moves. Deterministic for a fixed rng.
func Run(target Target, priors map[string]Prior, cfg Config, rng *rand.Rand) (*pop.Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(priors) == 0 {
		return nil, fmt.Errorf("sampler requires at least one prior")
	}

	names := sortedNames(priors)
	var sampled []string
	current := make(map[string]float64, len(names))
	for _, name := range names {
		current[name] = priors[name].Sample(rng)
		if !IsFixed(priors[name]) {
			sampled = append(sampled, name)
		}
	}
	if len(sampled) == 0 {
		return nil, fmt.Errorf("all priors are fixed; nothing to sample")
	}

	scales := make(map[string]float64, len(sampled))
	for _, name := range sampled {
		scales[name] = priors[name].Scale()
	}

	logPosterior := func(params map[string]float64) (float64, error) {
		lp := 0.0
		for _, name := range names {
			lp += priors[name].LogProb(params[name])
		}
		if math.IsInf(lp, -1) {
			return math.Inf(-1), nil
		}
		lnl, err := target(params)
		if err != nil {
			return 0, err
		}
		return lp + lnl, nil
	}

	currentLP, err := logPosterior(current)
	if err != nil {
		return nil, fmt.Errorf("evaluating initial point: %w", err)
	}
	// A dead starting point would stall the chain; redraw a few times.
	for tries := 0; math.IsInf(currentLP, -1) && tries < 100; tries++ {
		for _, name := range names {
			current[name] = priors[name].Sample(rng)
		}
		currentLP, err = logPosterior(current)
		if err != nil {
			return nil, err
		}
	}
	if math.IsInf(currentLP, -1) {
		return nil, fmt.Errorf("could not find a starting point with finite posterior after 100 prior draws")
	}

	total := cfg.Burnin + cfg.Steps
	chain := &pop.Chain{
		Names:   names,
		Samples: make([][]float64, 0, cfg.Steps),
		LogProb: make([]float64, 0, cfg.Steps),
	}
	windowAccepted := 0

	for step := 0; step < total; step++ {
		proposal := make(map[string]float64, len(names))
		for _, name := range names {
			proposal[name] = current[name]
		}
		for _, name := range sampled {
			proposal[name] += rng.NormFloat64() * scales[name]
		}

		proposalLP, err := logPosterior(proposal)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		if math.Log(rng.Float64()) < proposalLP-currentLP {
			current, currentLP = proposal, proposalLP
			windowAccepted++
			if step >= cfg.Burnin {
				chain.Accepted++
			}
		}

		burnin := step < cfg.Burnin
		if burnin && (step+1)%adaptWindow == 0 {
			acceptance := float64(windowAccepted) / adaptWindow
			factor := math.Exp(acceptance - targetAcceptance)
			for _, name := range sampled {
				scales[name] *= factor
			}
			windowAccepted = 0
		}

		if !burnin {
			row := make([]float64, len(names))
			for i, name := range names {
				row[i] = current[name]
			}
			chain.Samples = append(chain.Samples, row)
			chain.LogProb = append(chain.LogProb, currentLP)
			chain.Steps++
		}

		if cfg.LogEvery > 0 && (step+1)%cfg.LogEvery == 0 {
			logrus.Infof("step %d/%d (burnin=%v) log_prob=%.3f", step+1, total, burnin, currentLP)
		}
	}
	return chain, nil
}
