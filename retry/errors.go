package retry

import (
	"errors"
	"fmt"
)

// ExhaustedError is returned when every attempt failed, unwrapping it returns the cause of the last failure.
type ExhaustedError struct {
	attempts int
	err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no coordinator could be reached after %d attempts: %s", e.attempts, e.err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.err
}

// Attempts returns the number of attempts which were made.
func (e *ExhaustedError) Attempts() int {
	return e.attempts
}

// IsExhausted returns a boolean indicating whether the given error is an 'ExhaustedError'.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}

// AbortedError is returned when the context is cancelled between attempts.
type AbortedError struct {
	attempts int
	err      error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("failover aborted after %d attempt(s): %s", e.attempts, e.err)
}

func (e *AbortedError) Unwrap() error {
	return e.err
}
