// Package sampler draws hyper-posterior samples with an adaptive
// random-walk Metropolis algorithm. Priors are built from YAML-friendly
// specs; chains are deterministic for a fixed seed.
package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a one-dimensional prior density over a single hyper-parameter.
type Prior interface {
	// LogProb returns the log prior density at x (-Inf outside support).
	LogProb(x float64) float64
	// Sample draws one value from the prior.
	Sample(rng *rand.Rand) float64
	// Scale returns a characteristic width used to initialise proposal
	// step sizes.
	Scale() float64
}

// PriorSpec is the YAML form of a prior.
type PriorSpec struct {
	Type  string  `yaml:"type"`
	Min   float64 `yaml:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty"`
	Mu    float64 `yaml:"mu,omitempty"`
	Sigma float64 `yaml:"sigma,omitempty"`
	Value float64 `yaml:"value,omitempty"`
}

// NewPrior builds a Prior from its spec. Supported types: uniform,
// log-uniform, normal, fixed.
func NewPrior(spec PriorSpec) (Prior, error) {
	switch spec.Type {
	case "uniform":
		if spec.Max <= spec.Min {
			return nil, fmt.Errorf("uniform prior requires max > min, got [%g, %g]", spec.Min, spec.Max)
		}
		return &uniformPrior{min: spec.Min, max: spec.Max}, nil
	case "log-uniform":
		if spec.Min <= 0 || spec.Max <= spec.Min {
			return nil, fmt.Errorf("log-uniform prior requires 0 < min < max, got [%g, %g]", spec.Min, spec.Max)
		}
		return &logUniformPrior{min: spec.Min, max: spec.Max}, nil
	case "normal":
		if spec.Sigma <= 0 {
			return nil, fmt.Errorf("normal prior requires sigma > 0, got %g", spec.Sigma)
		}
		return &normalPrior{dist: distuv.Normal{Mu: spec.Mu, Sigma: spec.Sigma}}, nil
	case "fixed":
		return &fixedPrior{value: spec.Value}, nil
	default:
		return nil, fmt.Errorf("unknown prior type %q", spec.Type)
	}
}

type uniformPrior struct{ min, max float64 }

func (p *uniformPrior) LogProb(x float64) float64 {
	if x < p.min || x > p.max {
		return math.Inf(-1)
	}
	return -math.Log(p.max - p.min)
}

func (p *uniformPrior) Sample(rng *rand.Rand) float64 {
	return p.min + rng.Float64()*(p.max-p.min)
}

func (p *uniformPrior) Scale() float64 { return (p.max - p.min) / 10 }

type logUniformPrior struct{ min, max float64 }

func (p *logUniformPrior) LogProb(x float64) float64 {
	if x < p.min || x > p.max {
		return math.Inf(-1)
	}
	return -math.Log(x) - math.Log(math.Log(p.max/p.min))
}

func (p *logUniformPrior) Sample(rng *rand.Rand) float64 {
	return p.min * math.Exp(rng.Float64()*math.Log(p.max/p.min))
}

func (p *logUniformPrior) Scale() float64 { return (p.max - p.min) / 10 }

type normalPrior struct{ dist distuv.Normal }

func (p *normalPrior) LogProb(x float64) float64 { return p.dist.LogProb(x) }

func (p *normalPrior) Sample(rng *rand.Rand) float64 {
	return p.dist.Mu + p.dist.Sigma*rng.NormFloat64()
}

func (p *normalPrior) Scale() float64 { return p.dist.Sigma }

type fixedPrior struct{ value float64 }

func (p *fixedPrior) LogProb(x float64) float64 {
	if x != p.value {
		return math.Inf(-1)
	}
	return 0
}

func (p *fixedPrior) Sample(*rand.Rand) float64 { return p.value }

func (p *fixedPrior) Scale() float64 { return 0 }

// IsFixed reports whether a prior pins its parameter to a single value.
func IsFixed(p Prior) bool {
	_, ok := p.(*fixedPrior)
	return ok
}

// sortedNames returns map keys in deterministic order.
func sortedNames(priors map[string]Prior) []string {
	names := make([]string, 0, len(priors))
	for name := range priors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
