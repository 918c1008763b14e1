// Package random provides cryptographically sourced random selection, used to spread requests across coordinators.
package random

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrNoCandidates is returned when there's no index to choose from, either because the range is empty or every index
// was rejected.
var ErrNoCandidates = errors.New("no candidate index to choose from")

// Index returns a random index in [0, n).
func Index(n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoCandidates
	}

	if n == 1 {
		return 0, nil
	}

	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}

	return int(v.Int64()), nil
}

// IndexFunc returns a random index in [0, n) which satisfies the given predicate; every candidate is equally likely.
func IndexFunc(n int, keep func(i int) bool) (int, error) {
	candidates := make([]int, 0, max(n, 0))

	for i := 0; i < n; i++ {
		if keep(i) {
			candidates = append(candidates, i)
		}
	}

	idx, err := Index(len(candidates))
	if err != nil {
		return 0, err
	}

	return candidates[idx], nil
}
