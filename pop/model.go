package pop

import (
	"fmt"
	"sort"
)

// Model evaluates the population probability density at every row of a
// Dataset, given the current hyper-parameter values. Implementations return
// zero (not an error) outside their support; errors are reserved for
// structural problems such as missing columns or invalid hyper-parameters.
type Model interface {
	Prob(d *Dataset, params map[string]float64) ([]float64, error)
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(d *Dataset, params map[string]float64) ([]float64, error)

func (f ModelFunc) Prob(d *Dataset, params map[string]float64) ([]float64, error) {
	return f(d, params)
}

// Product composes models by elementwise multiplication, the hierarchical
// factorization p(θ|Λ) = p(m|Λ) p(χ|Λ) p(z|Λ).
type Product struct {
	parts []Model
}

// NewProduct builds a Product from one or more component models.
func NewProduct(parts ...Model) (*Product, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("product model requires at least one component")
	}
	return &Product{parts: parts}, nil
}

func (p *Product) Prob(d *Dataset, params map[string]float64) ([]float64, error) {
	prob, err := p.parts[0].Prob(d, params)
	if err != nil {
		return nil, err
	}
	// component slices may be shared with callers, so accumulate in a copy
	out := make([]float64, len(prob))
	copy(out, prob)
	for _, part := range p.parts[1:] {
		next, err := part.Prob(d, params)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] *= next[i]
		}
	}
	return out, nil
}

// Spec selects a named model from the registry with constructor options.
type Spec struct {
	Type    string             `yaml:"type"`
	Options map[string]float64 `yaml:"options,omitempty"`
}

// Constructor builds a Model from a Spec.
type Constructor func(spec Spec) (Model, error)

var modelRegistry = map[string]Constructor{}

// RegisterModel adds a named constructor to the registry. Sub-packages call
// this from init(); duplicate registration panics since it always indicates
// a wiring bug.
func RegisterModel(name string, ctor Constructor) {
	if _, ok := modelRegistry[name]; ok {
		panic(fmt.Sprintf("model %q registered twice", name))
	}
	modelRegistry[name] = ctor
}

// NewModel builds a Model from a Spec via the registry.
func NewModel(spec Spec) (Model, error) {
	ctor, ok := modelRegistry[spec.Type]
	if !ok {
		return nil, fmt.Errorf("unknown model type %q (have %v)", spec.Type, RegisteredModels())
	}
	return ctor(spec)
}

// RegisteredModels returns the sorted names of all registered models.
func RegisteredModels() []string {
	names := make([]string, 0, len(modelRegistry))
	for name := range modelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequireParams checks that all required keys exist in a params map.
func RequireParams(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("model requires hyper-parameter %q", k)
		}
	}
	return nil
}
