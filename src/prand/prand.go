// Package prand is the per-worker random source: a deterministic,
// seedable generator of integers and printable strings. One instance is
// owned by each worker and never shared, mirroring the teacher's
// per-goroutine *rand.Rand use in its bank-transaction stress test.
package prand

import (
	"math/rand/v2"
)

const charset = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz"

// Rand generates integers and printable strings for a single worker.
type Rand struct {
	rng *rand.Rand
}

// New returns a Rand seeded from an unpredictable source.
func New() *Rand {
	return &Rand{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Rand with a fixed seed, for reproducible runs.
func NewSeeded(seed uint64) *Rand {
	return &Rand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntRange returns an integer in [min, max], inclusive on both ends.
func (r *Rand) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + r.rng.IntN(max-min+1)
}

// UintRange returns an integer in [min, max], inclusive on both ends.
func (r *Rand) UintRange(min, max uint64) uint64 {
	if max < min {
		min, max = max, min
	}
	return min + r.rng.Uint64N(max-min+1)
}

// Float64Range returns a float in [min, max).
func (r *Rand) Float64Range(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + r.rng.Float64()*(max-min)
}

// Bool returns true or false with equal probability.
func (r *Rand) Bool() bool {
	return r.rng.IntN(2) == 1
}

// String returns a random printable string with length in
// [minLength, maxLength].
func (r *Rand) String(minLength, maxLength int) string {
	length := r.IntRange(minLength, maxLength)
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[r.rng.IntN(len(charset))]
	}
	return string(b)
}
