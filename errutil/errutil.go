// Package errutil contains helpers for inspecting errors returned by the standard library and transports.
package errutil

import (
	"context"
	"errors"
	"strings"
)

// Contains returns a boolean indicating whether the given error contained the given substring.
//
// NOTE: A <nil> error will always return false.
func Contains(err error, substr string) bool {
	return err != nil && strings.Contains(err.Error(), substr)
}

// ContainsAny returns a boolean indicating whether the given error contains any of the given substrings.
func ContainsAny(err error, substrs ...string) bool {
	for _, substr := range substrs {
		if Contains(err, substr) {
			return true
		}
	}

	return false
}

// IsContextError returns a boolean indicating whether the given error is the result of a cancelled context, or an
// expired deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
