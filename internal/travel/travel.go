// Package travel models how long wormhole probes take between stars.
//
// Distances are in light-years and speeds are fractions of c, so times come
// out in years. Speed and wait models are plain functions of elapsed
// simulation time; the network builder treats them as opaque.
package travel

import (
	"math"

	"webofworlds/internal/domain"
)

// SpeedFunc returns the probe speed, as a fraction of c, at simulation time t
type SpeedFunc func(t float64) float64

// WaitFunc returns the delay before a probe is launched at simulation time t
type WaitFunc func(t float64) float64

// TravelTime returns distance / speed
func TravelTime(distance, speed float64) (float64, error) {
	if !(speed > 0) {
		return 0, domain.ErrInvalidSpeed
	}
	return distance / speed, nil
}

// Arrival returns the time a probe launched after waiting wait from now reaches
// a star distance away, with speed sampled at the launch time.
func Arrival(now, distance, wait float64, speed SpeedFunc) (float64, error) {
	launch := now + wait
	v := speed(launch)
	dt, err := TravelTime(distance, v)
	if err != nil {
		return 0, &domain.InvalidSpeedError{Time: launch, Speed: v}
	}
	return launch + dt, nil
}

// Constant returns a speed that never changes
func Constant(v float64) SpeedFunc {
	return func(float64) float64 {
		return v
	}
}

// Logistic returns a speed that starts near initial and rises towards c as
// technology improves: a·e^(g·t) / sqrt(1 + (a·e^(g·t))²).
func Logistic(initial, growth float64) SpeedFunc {
	return func(t float64) float64 {
		x := initial * math.Exp(growth*t)
		return x / math.Sqrt(1+x*x)
	}
}

// DefaultSpeed is the technology curve used when a scenario does not set one
func DefaultSpeed() SpeedFunc {
	return Logistic(0.1, 0.0016)
}
