// Package transport performs the network I/O for requests to ArangoDB coordinators; it's the only layer which does.
package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Request is a fully prepared request, ready to be sent to a coordinator.
type Request struct {
	Method string

	// Host is the base URL of the coordinator, e.g. 'http://10.0.0.1:8529'; the transport keeps one client per host.
	Host string

	// URL is the full URL excluding query parameters.
	URL string

	Params  url.Values
	Headers map[string]string
	Body    []byte
}

// Response is the raw response returned by a coordinator, the body has been read in full.
type Response struct {
	Method     string
	URL        string
	Headers    http.Header
	StatusCode int
	StatusText string
	Body       []byte
}

// Transport sends requests to coordinators.
type Transport interface {
	// Send the given request, returning an error only if no response was received.
	Send(ctx context.Context, request *Request) (*Response, error)

	// Close releases any idle connections.
	Close()
}
