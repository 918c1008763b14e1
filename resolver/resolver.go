// Package resolver selects which of a number of equivalent coordinators should be used for a request attempt.
package resolver

import (
	"fmt"
	"sync"

	"github.com/arangotools/arangorest/random"
)

// Strategy is the policy used to select hosts.
type Strategy int

const (
	// StrategyRoundRobin cycles through the hosts in order.
	StrategyRoundRobin Strategy = iota

	// StrategyRandom selects a random host for each request.
	StrategyRandom

	// StrategySingle always uses the first host.
	StrategySingle
)

// String returns the name of the strategy, as used in log messages.
func (s Strategy) String() string {
	switch s {
	case StrategyRoundRobin:
		return "roundrobin"
	case StrategyRandom:
		return "random"
	case StrategySingle:
		return "single"
	}

	return fmt.Sprintf("unknown(%d)", int(s))
}

// HostResolver selects the index of the host which should be used for the next attempt of a request.
type HostResolver interface {
	// HostCount returns the number of configured hosts.
	HostCount() int

	// MaxTries returns the upper bound on the number of attempts made for a single logical request; this may exceed the
	// number of hosts, in which case hosts are retried.
	MaxTries() int

	// HostIndex returns the index of the next host to use, never returning an excluded index unless every host is
	// excluded. Resetting the exclusion set is left to the caller.
	HostIndex(excluded Set) int
}

// New returns a resolver for the given strategy; a non-positive 'maxTries' defaults to three attempts per host, and a
// single host always results in a 'Single' resolver.
//
// NOTE: Panics if given an unknown strategy.
func New(strategy Strategy, hostCount, maxTries int) HostResolver {
	hostCount = max(hostCount, 1)

	if maxTries <= 0 {
		maxTries = 3 * hostCount
	}

	if hostCount == 1 {
		return &Single{maxTries: maxTries}
	}

	switch strategy {
	case StrategyRoundRobin:
		return &RoundRobin{hostCount: hostCount, maxTries: maxTries, index: -1}
	case StrategyRandom:
		return &Random{hostCount: hostCount, maxTries: maxTries}
	case StrategySingle:
		return &Single{hostCount: hostCount, maxTries: maxTries}
	}

	panic(fmt.Sprintf("unknown host resolver strategy %s", strategy))
}

// Single always selects the first host.
type Single struct {
	hostCount int
	maxTries  int
}

var _ HostResolver = (*Single)(nil)

func (s *Single) HostCount() int {
	return max(s.hostCount, 1)
}

func (s *Single) MaxTries() int {
	return s.maxTries
}

func (s *Single) HostIndex(_ Set) int {
	return 0
}

// RoundRobin cycles through the hosts in order, skipping excluded hosts; safe for concurrent use.
type RoundRobin struct {
	hostCount int
	maxTries  int

	lock  sync.Mutex
	index int
}

var _ HostResolver = (*RoundRobin)(nil)

func (r *RoundRobin) HostCount() int {
	return r.hostCount
}

func (r *RoundRobin) MaxTries() int {
	return r.maxTries
}

func (r *RoundRobin) HostIndex(excluded Set) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	ignore := excluded.covers(r.hostCount)

	for i := 0; i < r.hostCount; i++ {
		r.index = (r.index + 1) % r.hostCount

		if ignore || !excluded.Contains(r.index) {
			break
		}
	}

	return r.index
}

// Random selects a uniformly random host from those not excluded.
type Random struct {
	hostCount int
	maxTries  int
}

var _ HostResolver = (*Random)(nil)

func (r *Random) HostCount() int {
	return r.hostCount
}

func (r *Random) MaxTries() int {
	return r.maxTries
}

func (r *Random) HostIndex(excluded Set) int {
	usable := func(i int) bool { return excluded.covers(r.hostCount) || !excluded.Contains(i) }

	index, err := random.IndexFunc(r.hostCount, usable)
	if err == nil {
		return index
	}

	// The system random source failed, fallback to the first usable host
	for i := 0; i < r.hostCount; i++ {
		if usable(i) {
			return i
		}
	}

	return 0
}
