package travel

import (
	"math"
	"math/rand/v2"
)

// NoWait launches every probe immediately
func NoWait() WaitFunc {
	return func(float64) float64 {
		return 0
	}
}

// ConstantWait delays every launch by d
func ConstantWait(d float64) WaitFunc {
	return func(float64) float64 {
		return d
	}
}

// HalfNormal draws |N(mean·e^(-decay·t), scale)|: launch cadence shortens as the
// civilisation matures. The caller owns rng; pass a seeded source for
// reproducible runs.
func HalfNormal(rng *rand.Rand, mean, decay, scale float64) WaitFunc {
	return func(t float64) float64 {
		loc := mean * math.Exp(-decay*t)
		return math.Abs(rng.NormFloat64()*scale + loc)
	}
}

// NewRand returns a PCG generator seeded from a single value
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DefaultWait is the launch cadence used when a scenario does not set one
func DefaultWait(seed uint64) WaitFunc {
	return HalfNormal(NewRand(seed), 100, 0.005, 50)
}
