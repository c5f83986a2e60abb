package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey, request and catalog
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Seed returns the seed the key was created from.
func (k SimulationKey) Seed() int64 {
	return int64(k)
}

// === Subsystem Constants ===

const (
	// SubsystemTyreWear drives the per-lap wear jitter.
	SubsystemTyreWear = "tyre_wear"

	// SubsystemLapNoise drives the per-lap lap-time noise.
	SubsystemLapNoise = "lap_noise"

	// SubsystemField drives the competitor pace spread.
	SubsystemField = "field"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
// Drawing more values from one subsystem never shifts another subsystem's
// sequence, so adding a pit stop does not change the competitor field.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Each simulation call owns its own instance.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// symmetric draws a value uniformly from [-halfWidth, +halfWidth).
func symmetric(rng *rand.Rand, halfWidth float64) float64 {
	return (rng.Float64()*2 - 1) * halfWidth
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
