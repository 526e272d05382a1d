package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/sampler"
)

// AnalysisConfig is the top-level YAML analysis specification: the event
// catalog, the population model stack, selection effects, priors, and
// sampler settings.
type AnalysisConfig struct {
	Seed       int64          `yaml:"seed"`
	Events     []EventSpec    `yaml:"events"`
	MaxSamples int            `yaml:"max_samples,omitempty"`
	Models     []pop.Spec     `yaml:"models"`
	Selection  *SelectionSpec `yaml:"selection,omitempty"`
	// ConvertSpinMoments derives alpha_chi/beta_chi from mu_chi and
	// sigma_chi_sq before every likelihood call.
	ConvertSpinMoments bool                         `yaml:"convert_spin_moments,omitempty"`
	Rate               bool                         `yaml:"rate,omitempty"`
	Workers            int                          `yaml:"workers,omitempty"`
	Priors             map[string]sampler.PriorSpec `yaml:"priors"`
	Sampler            SamplerSpec                  `yaml:"sampler"`
}

// EventSpec points at one event's posterior sample table.
type EventSpec struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// SelectionSpec configures the injection-campaign selection estimator.
type SelectionSpec struct {
	Injections string  `yaml:"injections"`
	Total      float64 `yaml:"total"`
}

// SamplerSpec configures the Metropolis run.
type SamplerSpec struct {
	Steps    int `yaml:"steps"`
	Burnin   int `yaml:"burnin"`
	LogEvery int `yaml:"log_every,omitempty"`
}

// LoadAnalysisConfig reads and validates an analysis YAML file.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis config: %w", err)
	}
	var cfg AnalysisConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing analysis config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *AnalysisConfig) applyDefaults() {
	if c.Sampler.Steps == 0 {
		c.Sampler.Steps = 5000
	}
	if c.Sampler.Burnin == 0 {
		c.Sampler.Burnin = 1000
	}
	for i := range c.Events {
		if c.Events[i].Name == "" {
			c.Events[i].Name = fmt.Sprintf("event_%d", i)
		}
	}
}

// Validate rejects configs that cannot produce a run, naming the offending
// field.
func (c *AnalysisConfig) Validate() error {
	if len(c.Events) == 0 {
		return fmt.Errorf("events: at least one event is required")
	}
	for i, ev := range c.Events {
		if ev.Path == "" {
			return fmt.Errorf("events[%d]: path is required", i)
		}
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("models: at least one model is required")
	}
	for i, spec := range c.Models {
		if spec.Type == "" {
			return fmt.Errorf("models[%d]: type is required", i)
		}
	}
	if c.Selection != nil {
		if c.Selection.Injections == "" {
			return fmt.Errorf("selection.injections: path is required")
		}
		if c.Selection.Total <= 0 {
			return fmt.Errorf("selection.total: must be positive, got %g", c.Selection.Total)
		}
	}
	if c.Rate && c.Selection == nil {
		return fmt.Errorf("rate: true requires a selection block")
	}
	if len(c.Priors) == 0 {
		return fmt.Errorf("priors: at least one prior is required")
	}
	if c.Rate {
		if _, ok := c.Priors["rate"]; !ok {
			return fmt.Errorf("priors: rate inference requires a prior named \"rate\"")
		}
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples: must be non-negative, got %d", c.MaxSamples)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: must be non-negative, got %d", c.Workers)
	}
	if c.Sampler.Steps <= 0 {
		return fmt.Errorf("sampler.steps: must be positive, got %d", c.Sampler.Steps)
	}
	if c.Sampler.Burnin < 0 {
		return fmt.Errorf("sampler.burnin: must be non-negative, got %d", c.Sampler.Burnin)
	}
	return nil
}
