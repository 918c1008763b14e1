package retry

import (
	"context"

	"github.com/arangotools/arangorest/resolver"
)

// Context is passed to each attempt, it carries the coordinator the attempt must be sent to.
type Context struct {
	context.Context
	attempt  int
	host     int
	excluded resolver.Set
}

// Attempt returns the current (one based) attempt number.
func (c *Context) Attempt() int {
	return c.attempt
}

// Host returns the index of the coordinator the attempt must be sent to.
func (c *Context) Host() int {
	return c.host
}

// FailureFunc returns the reason the outcome of an attempt should be retried against another coordinator, or <nil> if
// the outcome is final and should be returned as is.
type FailureFunc[T any] func(payload T, err error) error

// FailoverFunc is run after a failed attempt, before moving to the next coordinator.
type FailoverFunc func(ctx *Context, next int, cause error)

// FailoverOptions encapsulates the options for creating a failover loop.
type FailoverOptions[T any] struct {
	// Resolver picks the next coordinator and bounds the number of attempts.
	Resolver resolver.HostResolver

	// Backoff is the delay before moving to the next coordinator.
	Backoff Backoff

	// Failure classifies the outcome of each attempt, when not supplied every error is a failure.
	Failure FailureFunc[T]

	// OnFailover is run before each failover, when not supplied nothing is run.
	OnFailover FailoverFunc
}

// Failover sends a logical request to one coordinator at a time, excluding the coordinators which couldn't be reached
// until every one has been tried at which point the exclusions are reset.
type Failover[T any] struct {
	options FailoverOptions[T]
}

// NewFailover returns a failover loop with the given options.
func NewFailover[T any](options FailoverOptions[T]) Failover[T] {
	if options.Failure == nil {
		options.Failure = func(_ T, err error) error { return err }
	}

	return Failover[T]{options: options}
}

// MaxTries returns the maximum number of attempts made for a single logical request.
func (f Failover[T]) MaxTries() int {
	return max(f.options.Resolver.MaxTries(), 1)
}

// Do runs the given function starting with the given coordinator, until its outcome isn't a failure or the attempts
// are exhausted; cancelling the context stops the loop between attempts.
func (f Failover[T]) Do(ctx context.Context, host int, fn func(ctx *Context) (T, error)) (T, error) {
	var (
		state    = &Context{Context: ctx, host: host, excluded: resolver.NewSet()}
		maxTries = f.MaxTries()
		cause    error
	)

	for state.attempt = 1; state.attempt <= maxTries; state.attempt++ {
		if err := ctx.Err(); err != nil {
			return *new(T), &AbortedError{attempts: state.attempt - 1, err: err}
		}

		payload, err := fn(state)

		cause = f.options.Failure(payload, err)
		if cause == nil {
			return payload, err
		}

		if state.attempt == maxTries {
			break
		}

		next := f.next(state)

		if f.options.OnFailover != nil {
			f.options.OnFailover(state, next, cause)
		}

		if err := wait(state, f.options.Backoff.Delay(state.attempt)); err != nil {
			return *new(T), &AbortedError{attempts: state.attempt, err: err}
		}

		state.host = next
	}

	return *new(T), &ExhaustedError{attempts: maxTries, err: cause}
}

// next excludes the coordinator of the failed attempt and returns the one to use next, resetting the exclusions once
// every coordinator has failed.
func (f Failover[T]) next(state *Context) int {
	if state.excluded.Len() >= f.options.Resolver.HostCount() {
		state.excluded.Clear()
	}

	state.excluded.Add(state.host)

	return f.options.Resolver.HostIndex(state.excluded)
}
