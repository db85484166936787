package simulation

import "math/rand/v2"

// Source supplies the deviates consumed by the simulation.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64     // uniform in [0, 1)
	NormFloat64() float64 // standard normal
	Uint64() uint64
}

// NewSource returns a seeded PCG-backed Source.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// splitSource derives an independent stream from parent. Each filament owns
// one, so draws never depend on sweep order or goroutine scheduling.
func splitSource(parent Source) Source {
	return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
}
