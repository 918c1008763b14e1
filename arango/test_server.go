package arango

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
)

// databasePrefix matches the database prefix of an endpoint.
var databasePrefix = regexp.MustCompile(`^/_db/[^/]+`)

// TestServerOptions encapsulates the options which can be passed when creating a new test server.
type TestServerOptions struct {
	// Handlers are run to handle requests dispatched to the server, keyed without the database prefix.
	Handlers TestHandlers

	// A non-nil TLS config indicates that the server should use TLS
	TLSConfig *tls.Config
}

// TestServer is a mock ArangoDB coordinator used for unit testing functionality which relies on a connection.
type TestServer struct {
	t       *testing.T
	server  *httptest.Server
	options TestServerOptions

	lock      sync.Mutex
	requests  map[string]int
	databases map[string]int
}

// NewTestServer creates a new test server using the provided options, it's closed when the test completes.
func NewTestServer(t *testing.T, options TestServerOptions) *TestServer {
	if options.Handlers == nil {
		options.Handlers = make(TestHandlers)
	}

	server := &TestServer{
		t:         t,
		options:   options,
		requests:  make(map[string]int),
		databases: make(map[string]int),
	}

	if options.TLSConfig != nil {
		server.server = httptest.NewUnstartedServer(http.HandlerFunc(server.Handler))
		server.server.TLS = options.TLSConfig
		server.server.StartTLS()
	} else {
		server.server = httptest.NewServer(http.HandlerFunc(server.Handler))
	}

	t.Cleanup(server.Close)

	return server
}

// URL returns the fully qualified URL which can be used to connect to the server.
func (t *TestServer) URL() string {
	return t.server.URL
}

// Close shuts down the server, subsequent requests will fail to connect.
func (t *TestServer) Close() {
	t.server.Close()
}

// Requests returns the number of requests received for the given method/endpoint.
func (t *TestServer) Requests(method, endpoint string) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.requests[fmt.Sprintf("%s:%s", method, endpoint)]
}

// TotalRequests returns the total number of requests received.
func (t *TestServer) TotalRequests() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	var total int
	for _, n := range t.requests {
		total += n
	}

	return total
}

// DatabaseRequests returns the number of requests sent to the given database.
func (t *TestServer) DatabaseRequests(name string) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.databases[name]
}

// Handler is the base handler function for requests, endpoint handlers may be added using the 'Handlers' attribute of
// the server options.
//
// NOTE: The current test will fail if no valid handler is found.
func (t *TestServer) Handler(writer http.ResponseWriter, request *http.Request) {
	prefix := databasePrefix.FindString(request.URL.Path)
	endpoint := request.URL.Path[len(prefix):]

	t.lock.Lock()
	t.requests[fmt.Sprintf("%s:%s", request.Method, endpoint)]++

	if prefix != "" {
		t.databases[prefix[len("/_db/"):]]++
	}
	t.lock.Unlock()

	if t.options.Handlers.Handle(endpoint, writer, request) {
		return
	}

	t.t.Errorf("Endpoint '%s %s' does not have a handler", request.Method, endpoint)

	writer.WriteHeader(http.StatusNotImplemented)
}
