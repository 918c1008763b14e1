// Package arango is a client core for the ArangoDB HTTP API; it sends requests to a set of coordinators, failing over
// between them, and drives the server side cursor protocol through pluggable execution contexts.
package arango

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Header names sent by the client.
const (
	HeaderCharset        = "charset"
	HeaderContentType    = "content-type"
	HeaderAllowDirtyRead = "x-arango-allow-dirty-read"
	HeaderIfMatch        = "if-match"
	HeaderIfNoneMatch    = "if-none-match"
	HeaderAsync          = "x-arango-async"
	HeaderAsyncID        = "x-arango-async-id"
	HeaderTransactionID  = "x-arango-trx-id"
)

// methods are the HTTP methods which may be used to build a request.
var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
}

// RawBody is a request body which has already been serialized and is sent as is.
type RawBody []byte

// RequestOptions encapsulates the options for building a new request.
type RequestOptions struct {
	// Method is the HTTP method, one of GET, HEAD, PATCH, POST, PUT or DELETE.
	Method string

	// Endpoint is the server relative endpoint e.g. '/_api/cursor', it must begin with a '/'.
	Endpoint string

	// Headers are any additional headers, the keys are lower-cased.
	Headers map[string]string

	// Params are the query parameters; booleans are encoded as '1'/'0' and slices as repeated values.
	Params map[string]any

	// Data is the request body; strings, byte slices and 'RawBody' are sent as is, everything else is serialized.
	Data any

	// SkipDeserialize disables decoding the response body into a generic value; the raw body is always kept.
	SkipDeserialize bool

	// Read, Write and Exclusive name the collections accessed by the request; used when beginning transactions.
	Read      []string
	Write     []string
	Exclusive []string
}

// Request is an immutable request to an ArangoDB coordinator.
type Request struct {
	method      string
	endpoint    string
	headers     map[string]string
	params      url.Values
	data        any
	deserialize bool
	read        []string
	write       []string
	exclusive   []string
}

// NewRequest validates and normalizes the given options into a request.
func NewRequest(options RequestOptions) (*Request, error) {
	method := strings.ToUpper(options.Method)
	if !slices.Contains(methods, method) {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidMethod, options.Method)
	}

	if !strings.HasPrefix(options.Endpoint, "/") || !validEndpoint(options.Endpoint) {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidEndpoint, options.Endpoint)
	}

	return &Request{
		method:      method,
		endpoint:    options.Endpoint,
		headers:     normalizeHeaders(options.Headers),
		params:      normalizeParams(options.Params),
		data:        options.Data,
		deserialize: !options.SkipDeserialize,
		read:        slices.Clone(options.Read),
		write:       slices.Clone(options.Write),
		exclusive:   slices.Clone(options.Exclusive),
	}, nil
}

// MustNewRequest is like 'NewRequest' but panics if the options are invalid; for use with constant options.
func MustNewRequest(options RequestOptions) *Request {
	request, err := NewRequest(options)
	if err != nil {
		panic(err)
	}

	return request
}

// validEndpoint returns a boolean indicating whether the endpoint can be appended to a coordinator URL, it must not
// contain invalid escapes.
func validEndpoint(endpoint string) bool {
	_, err := url.Parse(endpoint)
	return err == nil
}

// normalizeHeaders lower-cases the given header keys and applies the default headers.
func normalizeHeaders(headers map[string]string) map[string]string {
	normalized := map[string]string{
		HeaderCharset:     "utf-8",
		HeaderContentType: "application/json",
	}

	for key, value := range headers {
		normalized[strings.ToLower(key)] = value
	}

	return normalized
}

// normalizeParams converts the given parameters into their string form.
func normalizeParams(params map[string]any) url.Values {
	normalized := make(url.Values, len(params))

	for key, value := range params {
		if value == nil {
			continue
		}

		if bytes, ok := value.([]byte); ok {
			normalized.Set(key, string(bytes))
			continue
		}

		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			normalized.Set(key, paramString(value))
			continue
		}

		for i := 0; i < rv.Len(); i++ {
			normalized.Add(key, paramString(rv.Index(i).Interface()))
		}
	}

	return normalized
}

// paramString returns the string form of a single parameter value.
func paramString(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "1"
		}

		return "0"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// Endpoint returns the server relative endpoint.
func (r *Request) Endpoint() string {
	return r.endpoint
}

// Headers returns a copy of the normalized headers.
func (r *Request) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// Params returns a copy of the normalized query parameters.
func (r *Request) Params() url.Values {
	params := make(url.Values, len(r.params))

	for key, values := range r.params {
		params[key] = slices.Clone(values)
	}

	return params
}

// Data returns the unserialized request body.
func (r *Request) Data() any {
	return r.data
}

// Deserialize returns a boolean indicating whether the response body should be decoded into a generic value.
func (r *Request) Deserialize() bool {
	return r.deserialize
}

// Read returns the collections read by the request.
func (r *Request) Read() []string {
	return slices.Clone(r.read)
}

// Write returns the collections written by the request.
func (r *Request) Write() []string {
	return slices.Clone(r.write)
}

// Exclusive returns the collections exclusively locked by the request.
func (r *Request) Exclusive() []string {
	return slices.Clone(r.exclusive)
}

// WithHeader returns a copy of the request with the given header set.
func (r *Request) WithHeader(key, value string) *Request {
	cloned := *r
	cloned.headers = maps.Clone(r.headers)
	cloned.headers[strings.ToLower(key)] = value

	return &cloned
}

// WithDirtyRead returns a copy of the request which may be served by a follower.
func (r *Request) WithDirtyRead() *Request {
	return r.WithHeader(HeaderAllowDirtyRead, "true")
}

// WithIfMatch returns a copy of the request which only succeeds if the document has the given revision.
func (r *Request) WithIfMatch(rev string) *Request {
	return r.WithHeader(HeaderIfMatch, rev)
}

// WithIfNoneMatch returns a copy of the request which only succeeds if the document doesn't have the given revision.
func (r *Request) WithIfNoneMatch(rev string) *Request {
	return r.WithHeader(HeaderIfNoneMatch, rev)
}
