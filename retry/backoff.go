// Package retry runs a single logical request against a set of coordinators, moving to another coordinator each time
// an attempt can't reach the one it was sent to.
package retry

import "time"

// Algorithm determines how the delay between failover attempts grows.
type Algorithm int

const (
	// AlgorithmConstant waits the same delay before every failover e.g. 50ms, 50ms, 50ms.
	AlgorithmConstant Algorithm = iota

	// AlgorithmLinear grows the delay with the number of failed attempts e.g. 50ms, 100ms, 150ms.
	AlgorithmLinear

	// AlgorithmExponential doubles the delay after each failed attempt e.g. 50ms, 100ms, 200ms.
	AlgorithmExponential
)

// maxShift caps the exponent used by 'AlgorithmExponential'.
const maxShift = 30

// Backoff describes the delay before moving to the next coordinator; a zero 'MinDelay' fails over immediately.
type Backoff struct {
	Algorithm Algorithm

	// MinDelay is the delay before the first failover.
	MinDelay time.Duration

	// MaxDelay caps the delay, it's raised to 'MinDelay' when lower.
	MaxDelay time.Duration
}

// Constant returns a backoff which waits the given delay before each failover.
func Constant(delay time.Duration) Backoff {
	return Backoff{Algorithm: AlgorithmConstant, MinDelay: delay, MaxDelay: delay}
}

// Delay returns how long to wait after the given (one based) failed attempt.
func (b Backoff) Delay(failed int) time.Duration {
	if b.MinDelay <= 0 {
		return 0
	}

	ceiling := max(b.MinDelay, b.MaxDelay)
	failed = max(failed, 1)

	var delay time.Duration

	switch b.Algorithm {
	case AlgorithmLinear:
		if time.Duration(failed) > ceiling/b.MinDelay {
			return ceiling
		}

		delay = time.Duration(failed) * b.MinDelay
	case AlgorithmExponential:
		shift := min(failed-1, maxShift)
		if b.MinDelay > ceiling>>shift {
			return ceiling
		}

		delay = b.MinDelay << shift
	default:
		delay = b.MinDelay
	}

	return min(delay, ceiling)
}

// wait sleeps for the given duration, returning early with the context error if it's cancelled.
func wait(ctx *Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
