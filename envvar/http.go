package envvar

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/arangotools/arangorest/netutil"
)

// GetHTTPTimeouts returns the given defaults, overridden by any timeouts set in the given environment variable.
//
// NOTE: Unlike the other getters, a malformed value results in an error rather than the defaults; unset fields are
// filled in by 'netutil.NewHTTPTransport'.
func GetHTTPTimeouts(varName string, defaults netutil.HTTPTimeouts) (netutil.HTTPTimeouts, error) {
	env, ok := os.LookupEnv(varName)
	if !ok || strings.TrimSpace(env) == "" {
		return defaults, nil
	}

	var overrides netutil.HTTPTimeouts

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(env), &overrides)
	if err != nil {
		return netutil.HTTPTimeouts{}, fmt.Errorf("invalid value for '%s': %w", varName, err)
	}

	return overrides.Merge(defaults), nil
}
