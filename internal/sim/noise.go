package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// NoiseSource generates the per-tick buffer of standard-normal draws.
// Each ray consumes three values: two for angular jitter and one for range
// jitter. The buffer is allocated once and refilled every tick; values are
// produced pairwise by Marsaglia polar rejection sampling, each pair from
// its own RNG seeded deterministically from (masterSeed, tick, pairIndex).
// That keeps refills reproducible and safe to parallelize with no shared
// mutable RNG state.
type NoiseSource struct {
	masterSeed  uint64
	raysPerTick int
	pairCount   int
	values      []float64
	workers     int
}

// NewNoiseSource sizes the buffer for raysPerTick rays.
func NewNoiseSource(masterSeed uint64, raysPerTick, workers int) (*NoiseSource, error) {
	if raysPerTick < 1 {
		return nil, fmt.Errorf("%w: raysPerTick must be >= 1, got %d", ErrInvalidParameter, raysPerTick)
	}
	if workers < 1 {
		workers = 1
	}
	total := 3 * raysPerTick
	pairCount := (total + 1) / 2
	return &NoiseSource{
		masterSeed:  masterSeed,
		raysPerTick: raysPerTick,
		pairCount:   pairCount,
		// Pairs always land two values; an odd total leaves one slot of
		// slack so the final pair never writes out of bounds.
		values:  make([]float64, 2*pairCount),
		workers: workers,
	}, nil
}

// splitmix64 is the finalizer of the SplitMix64 generator, used to derive
// well-mixed per-pair seeds from the master seed, tick and pair index.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func (n *NoiseSource) pairSeed(tick uint64, pair int) int64 {
	h := splitmix64(n.masterSeed ^ splitmix64(tick) ^ splitmix64(uint64(pair)*0x2545f4914f6cdd1d))
	return int64(h)
}

// polarPair draws one standard-normal pair via the Marsaglia polar method:
// sample (x, y) uniformly in [-1,1]^2, reject while s = x^2+y^2 falls
// outside (0, 1), then scale by sqrt(-2 ln s / s). Expected ~4/pi trials
// per accepted pair; each call owns its RNG so a pathological stream in one
// pair cannot stall any other.
func polarPair(rng *rand.Rand) (float64, float64) {
	for {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		s := x*x + y*y
		if s >= 1 || s <= 0 {
			continue
		}
		f := math.Sqrt(-2 * math.Log(s) / s)
		return x * f, y * f
	}
}

// Refill regenerates every slot of the buffer for the given tick.
// Independent pairs are filled in parallel chunks.
func (n *NoiseSource) Refill(tick uint64) {
	parallelFor(n.workers, n.pairCount, func(start, end int) {
		for p := start; p < end; p++ {
			rng := rand.New(rand.NewSource(n.pairSeed(tick, p)))
			a, b := polarPair(rng)
			n.values[2*p] = a
			n.values[2*p+1] = b
		}
	})
}

// AngularPair returns the two angular-noise draws for ray i of the active
// section.
func (n *NoiseSource) AngularPair(i int) (float64, float64) {
	return n.values[2*i], n.values[2*i+1]
}

// Distance returns the j-th range-noise draw. Distance values live past the
// angular region (2*raysPerTick values) and are consumed one per accepted
// ray, indexed by acceptance order, not by ray index.
func (n *NoiseSource) Distance(j int) float64 {
	return n.values[2*n.raysPerTick+j]
}

// RaysPerTick returns the ray capacity the buffer was sized for.
func (n *NoiseSource) RaysPerTick() int { return n.raysPerTick }
