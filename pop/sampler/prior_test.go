package sampler

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewPrior_Uniform(t *testing.T) {
	p, err := NewPrior(PriorSpec{Type: "uniform", Min: -2, Max: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.LogProb(0), -math.Log(5.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogProb(0) = %v, want %v", got, want)
	}
	if !math.IsInf(p.LogProb(3.5), -1) {
		t.Error("density outside support is not -Inf")
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		x := p.Sample(rng)
		if x < -2 || x > 3 {
			t.Fatalf("sample %v outside [-2, 3]", x)
		}
	}
}

func TestNewPrior_LogUniform(t *testing.T) {
	p, err := NewPrior(PriorSpec{Type: "log-uniform", Min: 1, Max: math.E})
	if err != nil {
		t.Fatal(err)
	}
	// On [1, e] the normalisation constant is 1, leaving -ln(x).
	if got := p.LogProb(1); math.Abs(got) > 1e-12 {
		t.Errorf("LogProb(1) = %v, want 0", got)
	}
	if got, want := p.LogProb(2), -math.Log(2.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogProb(2) = %v, want %v", got, want)
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		x := p.Sample(rng)
		if x < 1 || x > math.E {
			t.Fatalf("sample %v outside [1, e]", x)
		}
	}
}

func TestNewPrior_Normal(t *testing.T) {
	p, err := NewPrior(PriorSpec{Type: "normal", Mu: 2, Sigma: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	want := -math.Log(0.5 * math.Sqrt(2*math.Pi))
	if got := p.LogProb(2); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogProb(mu) = %v, want %v", got, want)
	}
	if got := p.Scale(); got != 0.5 {
		t.Errorf("Scale = %v, want sigma", got)
	}
}

func TestNewPrior_Fixed(t *testing.T) {
	p, err := NewPrior(PriorSpec{Type: "fixed", Value: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if !IsFixed(p) {
		t.Error("IsFixed is false for a fixed prior")
	}
	if p.Sample(nil) != 1.5 {
		t.Error("fixed prior does not return its value")
	}
	if !math.IsInf(p.LogProb(1.4), -1) {
		t.Error("fixed prior accepts a different value")
	}
}

func TestNewPrior_RejectsBadSpecs(t *testing.T) {
	bad := []PriorSpec{
		{Type: "uniform", Min: 1, Max: 1},
		{Type: "log-uniform", Min: 0, Max: 1},
		{Type: "log-uniform", Min: 2, Max: 1},
		{Type: "normal", Mu: 0, Sigma: 0},
		{Type: "cauchy"},
	}
	for _, spec := range bad {
		if _, err := NewPrior(spec); err == nil {
			t.Errorf("spec %+v accepted", spec)
		}
	}
}
