// Package envvar reads the environment variables which may be used to tune a connection without code changes.
package envvar

import (
	"os"
	"strconv"
	"time"
)

const (
	// MaxTries overrides the number of attempts made for a single request before failover gives up.
	MaxTries = "ARANGO_CLIENT_MAX_TRIES"

	// ClientTimeout overrides the timeout applied to each individual HTTP call.
	ClientTimeout = "ARANGO_CLIENT_TIMEOUT"

	// RequestTimeout overrides the timeout applied to a logical request, across all of its failover attempts.
	RequestTimeout = "ARANGO_CLIENT_REQUEST_TIMEOUT"

	// FailoverDelay overrides the minimum delay between failover attempts.
	FailoverDelay = "ARANGO_CLIENT_FAILOVER_DELAY"

	// HTTPTimeouts overrides the low level HTTP transport timeouts, see 'netutil.HTTPTimeouts' for the format.
	HTTPTimeouts = "ARANGO_HTTP_TIMEOUTS"
)

// lookup returns the parsed value of the given environment variable, 'false' is returned if the variable is unset or
// can't be parsed.
func lookup[T any](varName string, parse func(string) (T, error)) (T, bool) {
	env, ok := os.LookupEnv(varName)
	if !ok {
		return *new(T), false
	}

	val, err := parse(env)
	if err != nil {
		return *new(T), false
	}

	return val, true
}

// GetInt returns the int value of the environmental variable varName if the env var is not an int or empty it will
// return 0, false.
func GetInt(varName string) (int, bool) {
	return lookup(varName, strconv.Atoi)
}

// GetBool returns the boolean value of the environmental variable varName if the env var is empty or not a boolean it
// will return false, false.
func GetBool(varName string) (bool, bool) {
	return lookup(varName, strconv.ParseBool)
}

// GetDuration returns the time.Duration value of the environmental variable varName if the env var is empty or not a
// valid duration string it will return 0, false.
func GetDuration(varName string) (time.Duration, bool) {
	return lookup(varName, time.ParseDuration)
}
