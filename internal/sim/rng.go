package sim

import "math/rand"

// RNG wraps a single seeded source for every random draw in a run:
// inter-arrival times, jitter, vehicle urgency. math/rand (v1) is used on
// purpose: rand.NewSource has a stable documented sequence, which the
// reproducibility guarantee depends on.
type RNG struct {
	r *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Exp draws from an exponential distribution with the given mean.
func (g *RNG) Exp(mean float64) float64 {
	return g.r.ExpFloat64() * mean
}

// Normal draws from a normal distribution with the given mean and stddev.
func (g *RNG) Normal(mean, std float64) float64 {
	return mean + g.r.NormFloat64()*std
}

// Uniform draws uniformly from [lo, hi).
func (g *RNG) Uniform(lo, hi float64) float64 {
	return lo + g.r.Float64()*(hi-lo)
}
