package netutil

import "strings"

// schemes maps every accepted endpoint scheme onto the HTTP scheme used on the wire.
var schemes = map[string]string{
	"http":      "http",
	"https":     "https",
	"tcp":       "http",
	"ssl":       "https",
	"arangodb":  "http",
	"arangodbs": "https",
}

// TrimSchema trims known schema prefixes from the given host.
func TrimSchema(host string) string {
	for scheme := range schemes {
		if trimmed, ok := strings.CutPrefix(host, scheme+"://"); ok {
			return trimmed
		}
	}

	return host
}

// ToHTTPSchema converts the schema prefix of the given endpoint to either 'http' or 'https', endpoints without a
// schema are assumed to be plain text.
func ToHTTPSchema(endpoint string) string {
	for scheme, replacement := range schemes {
		if trimmed, ok := strings.CutPrefix(endpoint, scheme+"://"); ok {
			return replacement + "://" + trimmed
		}
	}

	return "http://" + endpoint
}
