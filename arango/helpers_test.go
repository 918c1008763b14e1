package arango

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arangotools/arangorest/resolver"
	"github.com/arangotools/arangorest/testutil"
	"github.com/arangotools/arangorest/transport"
)

// testHost returns the base URL of the nth fake coordinator.
func testHost(n int) string {
	return fmt.Sprintf("http://host%d:8529", n)
}

// newMockConnection returns a round-robin connection to the given number of fake coordinators which sends requests
// using the given transport.
func newMockConnection(
	t *testing.T, hosts, maxTries int, mockTransport transport.Transport, fns ...func(options *ConnectionOptions),
) *Connection {
	endpoints := make([]string, 0, hosts)
	for i := 0; i < hosts; i++ {
		endpoints = append(endpoints, testHost(i))
	}

	options := ConnectionOptions{
		Endpoints: endpoints,
		Strategy:  resolver.StrategyRoundRobin,
		MaxTries:  maxTries,
		Transport: mockTransport,
	}

	for _, fn := range fns {
		fn(&options)
	}

	conn, err := NewConnection(options)
	require.NoError(t, err)

	return conn
}

// newServerConnection returns a round-robin connection to the given test servers.
func newServerConnection(t *testing.T, servers ...*TestServer) *Connection {
	endpoints := make([]string, 0, len(servers))
	for _, server := range servers {
		endpoints = append(endpoints, server.URL())
	}

	conn, err := NewConnection(ConnectionOptions{
		Endpoints: endpoints,
		Strategy:  resolver.StrategyRoundRobin,
		Username:  "root",
		Password:  "secret",
	})
	require.NoError(t, err)

	t.Cleanup(conn.Close)

	return conn
}

// rawResponse returns a transport response with the given status and body.
func rawResponse(status int, body string) *transport.Response {
	return &transport.Response{
		Method:     http.MethodGet,
		StatusCode: status,
		StatusText: http.StatusText(status),
		Headers:    make(http.Header),
		Body:       []byte(body),
	}
}

// unavailable is the body of a coordinator which can't serve requests.
const unavailable = `{"error":true,"code":503,"errorNum":503,"errorMessage":"service unavailable"}`

// matchHost matches requests sent to the given host.
func matchHost(host string) any {
	return mock.MatchedBy(func(request *transport.Request) bool { return request.Host == host })
}

// recordHosts records the host of each request sent through the mock.
func recordHosts(hosts *[]string) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		*hosts = append(*hosts, args.Get(1).(*transport.Request).Host)
	}
}

// cursorBody marshals a cursor batch.
func cursorBody(t *testing.T, id string, hasMore bool, result []any, extra map[string]any) []byte {
	body := map[string]any{
		"error":   false,
		"code":    http.StatusCreated,
		"hasMore": hasMore,
		"result":  result,
		"cached":  false,
	}

	if id != "" {
		body["id"] = id
	}

	for key, value := range extra {
		body[key] = value
	}

	return testutil.MarshalJSON(t, body)
}
