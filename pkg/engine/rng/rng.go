// Package rng provides a small, fast, state-serializable pseudo random source.
//
// The generator is xorshift128+ seeded through SplitMix64. Given the same seed it
// produces the same sequence on every platform, and its full state can be captured
// and restored so a caller can rewind and replay a phase.
//
// A Rand is not safe for concurrent use; give each goroutine its own stream.
package rng

const (
	golden = 0x9e3779b97f4a7c15
	mixA   = 0xbf58476d1ce4e5b9
	mixB   = 0x94d049bb133111eb

	// float53 scales the top 53 bits of a uint64 into [0,1).
	float53 = 1.0 / (1 << 53)
)

// State is the complete internal state of a Rand.
type State struct {
	S0, S1 uint64
}

// Rand is an xorshift128+ generator.
type Rand struct {
	s0, s1 uint64
}

// New creates a generator whose 128-bit state is expanded from seed with SplitMix64.
func New(seed uint64) *Rand {
	x := seed
	r := &Rand{s0: splitMix64(&x), s1: splitMix64(&x)}
	if r.s0 == 0 && r.s1 == 0 {
		// xorshift never leaves the all-zero state.
		r.s0 = golden
	}
	return r
}

// splitMix64 advances x and returns the next SplitMix64 output.
func splitMix64(x *uint64) uint64 {
	*x += golden
	return finalize(*x)
}

func finalize(z uint64) uint64 {
	z = (z ^ (z >> 30)) * mixA
	z = (z ^ (z >> 27)) * mixB
	return z ^ (z >> 31)
}

// Mix deterministically combines a seed and a salt into a new, well-diffused seed.
// Distinct salts yield statistically independent streams from the same seed.
func Mix(seed, salt uint64) uint64 {
	return finalize(seed ^ (salt*golden + golden))
}

// Uint64 returns the next raw 64-bit output.
func (r *Rand) Uint64() uint64 {
	s1 := r.s0
	s0 := r.s1
	r.s0 = s0
	s1 ^= s1 << 23
	r.s1 = s1 ^ s0 ^ (s1 >> 17) ^ (s0 >> 26)
	return r.s1 + s0
}

// Next returns a float64 in [0,1).
func (r *Rand) Next() float64 {
	return float64(r.Uint64()>>11) * float53
}

// Intn returns an int in [0,n). It returns 0 when n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Range returns an int in [min,max], both inclusive. It returns min when max <= min.
func (r *Rand) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// Float returns a float64 in [min,max).
func (r *Rand) Float(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Probability returns true with probability p.
func (r *Rand) Probability(p float64) bool {
	return r.Next() < p
}

// Bool returns a fair coin flip.
func (r *Rand) Bool() bool {
	return r.Next() < 0.5
}

// Shuffle permutes n elements in place with Fisher-Yates using swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.Intn(i+1))
	}
}

// Snapshot captures the current state.
func (r *Rand) Snapshot() State {
	return State{S0: r.s0, S1: r.s1}
}

// Restore rewinds the generator to a previously captured state.
func (r *Rand) Restore(s State) {
	if s.S0 == 0 && s.S1 == 0 {
		panic("rng: restoring the all-zero state")
	}
	r.s0, r.s1 = s.S0, s.S1
}

// Choice returns a uniformly chosen element. It panics on an empty slice.
func Choice[T any](r *Rand, items []T) T {
	if len(items) == 0 {
		panic("rng: Choice on empty slice")
	}
	return items[r.Intn(len(items))]
}
