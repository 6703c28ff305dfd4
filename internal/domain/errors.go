package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when a build or query runs against a catalog with no stars
	ErrEmptyCatalog = errors.New("catalog has no stars")
	// ErrInvalidSpeed is returned when a speed function yields a non-positive value
	ErrInvalidSpeed = errors.New("speed must be positive")
	// ErrInvalidWait is returned when a wait function yields a negative or NaN value
	ErrInvalidWait = errors.New("wait time must be non-negative")
	// ErrStarNotFound is returned for catalog indices or names that do not exist
	ErrStarNotFound = errors.New("star not found")
	// ErrInvalidLimit is returned for a non-positive corridor width
	ErrInvalidLimit = errors.New("corridor limit must be positive")
	// ErrInvalidParameter is returned for out-of-range build parameters
	ErrInvalidParameter = errors.New("invalid build parameter")
	// ErrQueueFull is returned when the breadth-first work queue would exceed its capacity
	ErrQueueFull = errors.New("work queue is full")
)

// InvalidSpeedError reports the simulation time at which a speed function failed
type InvalidSpeedError struct {
	Time  float64
	Speed float64
}

func (e *InvalidSpeedError) Error() string {
	return fmt.Sprintf("speed %g at t=%g: %v", e.Speed, e.Time, ErrInvalidSpeed)
}

// Is matches ErrInvalidSpeed
func (e *InvalidSpeedError) Is(target error) bool {
	return target == ErrInvalidSpeed
}

// InvalidWaitError reports the simulation time at which a wait function failed
type InvalidWaitError struct {
	Time float64
	Wait float64
}

func (e *InvalidWaitError) Error() string {
	return fmt.Sprintf("wait %g at t=%g: %v", e.Wait, e.Time, ErrInvalidWait)
}

// Is matches ErrInvalidWait
func (e *InvalidWaitError) Is(target error) bool {
	return target == ErrInvalidWait
}
