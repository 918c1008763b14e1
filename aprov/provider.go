// Package aprov provides the authentication used when sending requests to ArangoDB coordinators.
package aprov

import "net/http"

// Provider is the interface used to authenticate requests.
type Provider interface {
	// SetAuth authenticates the given request, which is about to be sent to the given host.
	SetAuth(host string, req *http.Request)

	// GetUserAgent returns the user agent which should be sent with each request, may be empty.
	GetUserAgent() string
}
