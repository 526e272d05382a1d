package pop

import (
	"hash/fnv"
	"math/rand"
)

// RunKey uniquely identifies a reproducible analysis run. Two runs with the
// same RunKey and identical configuration MUST produce bit-for-bit identical
// chains.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

const (
	// SubsystemSampler is the RNG subsystem driving the hyper-posterior
	// sampler. Uses the master seed directly so --seed maps one-to-one onto
	// chain output.
	SubsystemSampler = "sampler"

	// SubsystemSelection is the RNG subsystem for selection-effect
	// resampling diagnostics.
	SubsystemSelection = "selection"

	// SubsystemSynthesis is the RNG subsystem for synthetic catalog
	// generation in tests and examples.
	SubsystemSynthesis = "synthesis"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem.
//
// Derivation formula:
//   - For SubsystemSampler: uses the master seed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        RunKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a RunKey.
func NewPartitionedRNG(key RunKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same subsystem name always returns the same *rand.Rand
// instance (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemSampler {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// fnv1a64 hashes a string with FNV-1a and reinterprets the result as int64.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
