package arango

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arangotools/arangorest/testutil"
)

// TestHandlers is a readability wrapper around the endpoint handlers for a test server.
type TestHandlers map[string]http.HandlerFunc

// Add a new handler to the endpoint handlers, note that the method is required to ensure unique handlers for each
// endpoint. The endpoint excludes the '/_db/<name>' prefix.
func (e TestHandlers) Add(method, endpoint string, handler http.HandlerFunc) {
	e[fmt.Sprintf("%s:%s", method, endpoint)] = handler
}

// Handle utility function which handles the provided request returning a boolean indicating whether a handler was
// found.
func (e TestHandlers) Handle(endpoint string, writer http.ResponseWriter, request *http.Request) bool {
	handler, ok := e[fmt.Sprintf("%s:%s", request.Method, endpoint)]
	if !ok {
		return false
	}

	handler(writer, request)

	return true
}

// NewTestHandler creates the most basic type of handler which will respond with the provided status/body.
func NewTestHandler(t *testing.T, status int, body []byte) http.HandlerFunc {
	return NewTestHandlerWithHeaders(t, status, nil, body)
}

// NewTestHandlerWithHeaders creates a handler which responds with the provided status/headers/body.
func NewTestHandlerWithHeaders(t *testing.T, status int, headers map[string]string, body []byte) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		for key, value := range headers {
			writer.Header().Set(key, value)
		}

		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerWithJSON creates a handler which responds with the provided status and value encoded as JSON.
func NewTestHandlerWithJSON(t *testing.T, status int, value any) http.HandlerFunc {
	return NewTestHandler(t, status, testutil.MarshalJSON(t, value))
}

// NewTestHandlerWithError creates a handler which responds with an ArangoDB error envelope.
func NewTestHandlerWithError(t *testing.T, status, errorNum int, message string) http.HandlerFunc {
	return NewTestHandlerWithJSON(t, status, map[string]any{
		"error":        true,
		"code":         status,
		"errorNum":     errorNum,
		"errorMessage": message,
	})
}

// NewTestHandlerWithValue creates a handler which decodes the JSON request body into the provided value before
// responding with the provided status/body. This should be used to validate that a requests body was the expected
// value.
func NewTestHandlerWithValue(t *testing.T, status int, body []byte, value any) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		testutil.DecodeJSON(t, request.Body, value)

		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerWithRequest creates a handler which passes each request to the provided function before responding
// with the provided status/body; used to inspect headers and query parameters.
func NewTestHandlerWithRequest(t *testing.T, status int, body []byte, fn func(request *http.Request)) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		fn(request)

		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerSequence creates a handler which delegates the nth request to the nth handler, the last handler
// handles any further requests.
func NewTestHandlerSequence(handlers ...http.HandlerFunc) http.HandlerFunc {
	var (
		lock  sync.Mutex
		calls int
	)

	return func(writer http.ResponseWriter, request *http.Request) {
		lock.Lock()
		handler := handlers[min(calls, len(handlers)-1)]
		calls++
		lock.Unlock()

		handler(writer, request)
	}
}

// NewTestHandlerWithHijack creates a handler which will hijack the connection an immediately close it; this is
// simulating a socket closed in flight error.
func NewTestHandlerWithHijack(t *testing.T) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		hijacker, ok := writer.(http.Hijacker)
		require.True(t, ok)

		conn, _, err := hijacker.Hijack()
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}
}
