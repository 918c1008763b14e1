package arango

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/arangotools/arangorest/envvar"
	"github.com/arangotools/arangorest/errref"
	"github.com/arangotools/arangorest/resolver"
	"github.com/arangotools/arangorest/testutil"
	"github.com/arangotools/arangorest/transport"
)

var version = MustNewRequest(RequestOptions{Method: http.MethodGet, Endpoint: "/_api/version"})

func TestNewConnection(t *testing.T) {
	type test struct {
		name     string
		options  ConnectionOptions
		hosts    []string
		database string
		maxTries int
	}

	tests := []*test{
		{
			name:     "SingleHost",
			options:  ConnectionOptions{ConnectionString: "http://localhost"},
			hosts:    []string{"http://localhost:8529"},
			database: DefaultDatabase,
			maxTries: 3,
		},
		{
			name:     "ConnectionStringDatabase",
			options:  ConnectionOptions{ConnectionString: "http://h1:8529,h2:8530/_db/app"},
			hosts:    []string{"http://h1:8529", "http://h2:8530"},
			database: "app",
			maxTries: 6,
		},
		{
			name: "DatabaseOverride",
			options: ConnectionOptions{
				ConnectionString: "https://h1,h2,h3/_db/app",
				Database:         "other",
				MaxTries:         4,
			},
			hosts:    []string{"https://h1:8529", "https://h2:8529", "https://h3:8529"},
			database: "other",
			maxTries: 4,
		},
		{
			name:     "Endpoints",
			options:  ConnectionOptions{Endpoints: []string{"http://h1:8529", "http://h2:8529"}},
			hosts:    []string{"http://h1:8529", "http://h2:8529"},
			database: DefaultDatabase,
			maxTries: 6,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conn, err := NewConnection(test.options)
			require.NoError(t, err)

			require.Equal(t, test.hosts, conn.Hosts())
			require.Equal(t, test.database, conn.Database())
			require.Equal(t, test.maxTries, conn.resolver.MaxTries())
			require.NotNil(t, conn.Serializer())
			require.Same(t, errref.Default(), conn.ErrorTable())

			for i, host := range test.hosts {
				require.Equal(t, host+"/_db/"+test.database, conn.prefixes[i])
			}
		})
	}
}

func TestNewConnectionInvalid(t *testing.T) {
	_, err := NewConnection(ConnectionOptions{ConnectionString: "ftp://localhost"})
	require.Error(t, err)

	_, err = NewConnection(ConnectionOptions{
		Endpoints: []string{"http://h1", "http://h2"},
		Resolver:  resolver.New(resolver.StrategyRoundRobin, 3, 0),
	})
	require.Error(t, err)
}

func TestNewConnectionEnvironment(t *testing.T) {
	t.Setenv(envvar.MaxTries, "2")
	t.Setenv(envvar.RequestTimeout, "5s")
	t.Setenv(envvar.FailoverDelay, "1ms")

	conn, err := NewConnection(ConnectionOptions{ConnectionString: "http://h1,h2,h3", MaxTries: 10})
	require.NoError(t, err)

	require.Equal(t, 2, conn.resolver.MaxTries())
	require.Equal(t, 5*time.Second, conn.requestTimeout)
	require.Equal(t, time.Millisecond, conn.failoverDelay)
}

func TestNewConnectionInvalidHTTPTimeouts(t *testing.T) {
	t.Setenv(envvar.HTTPTimeouts, `{"unknown":"1s"}`)

	_, err := NewConnection(ConnectionOptions{ConnectionString: "http://localhost"})
	require.Error(t, err)
}

func TestSendRequestSuccess(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.MatchedBy(func(request *transport.Request) bool {
		return request.Method == http.MethodGet &&
			request.Host == testHost(0) &&
			request.URL == testHost(0)+"/_db/_system/_api/version" &&
			request.Headers["content-type"] == "application/json"
	})).Return(rawResponse(http.StatusOK, `{"server":"arango","version":"3.11.0"}`), nil)

	conn := newMockConnection(t, 1, 0, &mockTransport)

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.Equal(t, map[string]any{"server": "arango", "version": "3.11.0"}, resp.Body)

	mockTransport.AssertNumberOfCalls(t, "Send", 1)
}

func TestSendRequestSerializesBody(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.MatchedBy(func(request *transport.Request) bool {
		return string(request.Body) == `{"query":"RETURN 1"}` && request.Params.Get("count") == "1"
	})).Return(rawResponse(http.StatusCreated, `{"result":[1],"hasMore":false}`), nil)

	conn := newMockConnection(t, 1, 0, &mockTransport)

	resp, err := conn.SendRequest(context.Background(), MustNewRequest(RequestOptions{
		Method:   http.MethodPost,
		Endpoint: "/_api/cursor",
		Params:   map[string]any{"count": true},
		Data:     map[string]string{"query": "RETURN 1"},
	}))
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)

	mockTransport.AssertExpectations(t)
}

func TestSendRequestFailoverBound(t *testing.T) {
	type test struct {
		name     string
		hosts    int
		maxTries int
		expected []string
	}

	tests := []*test{
		{
			name:     "SingleHost",
			hosts:    1,
			maxTries: 3,
			expected: []string{testHost(0), testHost(0), testHost(0)},
		},
		{
			name:     "TwoHostsResetsExclusions",
			hosts:    2,
			maxTries: 5,
			expected: []string{testHost(0), testHost(1), testHost(0), testHost(1), testHost(0)},
		},
		{
			name:     "ThreeHostsDefaultMaxTries",
			hosts:    3,
			expected: []string{
				testHost(0), testHost(1), testHost(2),
				testHost(0), testHost(1), testHost(2),
				testHost(0), testHost(1), testHost(2),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var (
				mockTransport transport.MockTransport
				hosts         []string
			)

			refused := errors.New("dial tcp: connect: connection refused")

			mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
				Run(recordHosts(&hosts)).
				Return(nil, refused)

			conn := newMockConnection(t, test.hosts, test.maxTries, &mockTransport)

			resp, err := conn.SendRequest(context.Background(), version)
			require.Nil(t, resp)

			var aborted *ConnectionAbortedError
			require.ErrorAs(t, err, &aborted)
			require.Equal(t, len(test.expected), aborted.MaxTries())
			require.ErrorIs(t, err, refused)

			require.Equal(t, test.expected, hosts)
			mockTransport.AssertNumberOfCalls(t, "Send", len(test.expected))
		})
	}
}

func TestSendRequestFailoverToHealthyHost(t *testing.T) {
	var (
		mockTransport transport.MockTransport
		hosts         []string
	)

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(0))).
		Run(recordHosts(&hosts)).
		Return(nil, &transport.SocketClosedInFlightError{})

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(1))).
		Run(recordHosts(&hosts)).
		Return(rawResponse(http.StatusServiceUnavailable, unavailable), nil)

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(2))).
		Run(recordHosts(&hosts)).
		Return(rawResponse(http.StatusOK, `{"version":"3.11.0"}`), nil)

	conn := newMockConnection(t, 3, 0, &mockTransport)

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.Equal(t, []string{testHost(0), testHost(1), testHost(2)}, hosts)
}

func TestSendRequestUnavailableExhausted(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
		Return(rawResponse(http.StatusServiceUnavailable, unavailable), nil)

	conn := newMockConnection(t, 2, 4, &mockTransport)

	_, err := conn.SendRequest(context.Background(), version)

	var aborted *ConnectionAbortedError
	require.ErrorAs(t, err, &aborted)
	require.Equal(t, 4, aborted.MaxTries())
	require.True(t, IsErrorCode(err, errref.CodeHTTPUnavailable))

	mockTransport.AssertNumberOfCalls(t, "Send", 4)
}

func TestSendRequestDisableUnavailableFailover(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
		Return(rawResponse(http.StatusServiceUnavailable, unavailable), nil)

	conn := newMockConnection(t, 2, 4, &mockTransport, func(options *ConnectionOptions) {
		options.DisableUnavailableFailover = true
	})

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.False(t, resp.IsSuccess)
	require.True(t, resp.IsUnavailable())

	mockTransport.AssertNumberOfCalls(t, "Send", 1)
}

func TestSendRequestBusinessErrorSentOnce(t *testing.T) {
	type test struct {
		name   string
		status int
		body   string
	}

	tests := []*test{
		{
			name:   "DocumentNotFound",
			status: http.StatusNotFound,
			body:   `{"error":true,"code":404,"errorNum":1202,"errorMessage":"document not found"}`,
		},
		{
			name:   "Conflict",
			status: http.StatusConflict,
			body:   `{"error":true,"code":409,"errorNum":1210,"errorMessage":"unique constraint violated"}`,
		},
		{
			name:   "UnavailableWithOtherErrorNum",
			status: http.StatusServiceUnavailable,
			body:   `{"error":true,"code":503,"errorNum":1495,"errorMessage":"leadership challenge is ongoing"}`,
		},
		{
			name:   "InternalServerError",
			status: http.StatusInternalServerError,
			body:   `internal error`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var mockTransport transport.MockTransport

			mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
				Return(rawResponse(test.status, test.body), nil)

			conn := newMockConnection(t, 3, 0, &mockTransport)

			resp, err := conn.SendRequest(context.Background(), version)
			require.NoError(t, err)
			require.False(t, resp.IsSuccess)
			require.Equal(t, test.status, resp.StatusCode)

			mockTransport.AssertNumberOfCalls(t, "Send", 1)
		})
	}
}

func TestSendRequestUnknownAuthorityNotFailedOver(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
		Return(nil, &transport.UnknownAuthorityError{})

	conn := newMockConnection(t, 3, 0, &mockTransport)

	_, err := conn.SendRequest(context.Background(), version)
	require.True(t, transport.IsUnknownAuthority(err))
	require.False(t, IsConnectionAborted(err))

	mockTransport.AssertNumberOfCalls(t, "Send", 1)
}

// countingTransport counts the requests passed to the wrapped transport.
type countingTransport struct {
	transport.Transport
	sent atomic.Int32
}

func (c *countingTransport) Send(ctx context.Context, request *transport.Request) (*transport.Response, error) {
	c.sent.Add(1)
	return c.Transport.Send(ctx, request)
}

func TestSendRequestPrepareFailureNotFailedOver(t *testing.T) {
	counting := &countingTransport{Transport: transport.NewHTTP(transport.HTTPOptions{})}

	conn := newMockConnection(t, 2, 4, counting)

	// Built directly, 'NewRequest' rejects endpoints with invalid escapes.
	request := &Request{
		method:      http.MethodGet,
		endpoint:    "/_api/document/%zz",
		headers:     normalizeHeaders(nil),
		deserialize: true,
	}

	_, err := conn.SendRequest(context.Background(), request)
	require.True(t, transport.IsPrepare(err))
	require.False(t, IsConnectionAborted(err))
	require.Equal(t, int32(1), counting.sent.Load())
}

func TestFailoverReason(t *testing.T) {
	type test struct {
		name     string
		cause    error
		expected string
	}

	unavailableResp := newResponse(rawResponse(http.StatusServiceUnavailable, unavailable), true, NewJSONSerializer(),
		errref.Default())

	tests := []*test{
		{
			name:     "Unavailable",
			cause:    NewServerError(unavailableResp),
			expected: "coordinator unavailable",
		},
		{
			name:     "Unreachable",
			cause:    &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
			expected: "coordinator unreachable",
		},
		{
			name:     "Other",
			cause:    errors.New("malformed HTTP response"),
			expected: "request failed",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, failoverReason(test.cause))
		})
	}
}

func TestSendRequestCancelled(t *testing.T) {
	var mockTransport transport.MockTransport

	conn := newMockConnection(t, 3, 0, &mockTransport)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.SendRequest(ctx, version)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsConnectionAborted(err))

	mockTransport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendRequestCancelledInFlight(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	conn := newMockConnection(t, 3, 0, &mockTransport)

	_, err := conn.SendRequest(context.Background(), version)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, IsConnectionAborted(err))

	mockTransport.AssertNumberOfCalls(t, "Send", 1)
}

func TestSendRequestFailoverDelay(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).
		Return(nil, errors.New("connection reset by peer"))

	conn := newMockConnection(t, 2, 3, &mockTransport, func(options *ConnectionOptions) {
		options.FailoverDelay = 20 * time.Millisecond
	})

	start := time.Now()

	_, err := conn.SendRequest(context.Background(), version)
	require.True(t, IsConnectionAborted(err))
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestSendRequestWithMockResolver(t *testing.T) {
	var (
		mockTransport transport.MockTransport
		mockResolver  resolver.MockHostResolver
	)

	mockResolver.On("HostCount").Return(2)
	mockResolver.On("MaxTries").Return(2)
	mockResolver.On("HostIndex", resolver.Set(nil)).Return(1).Once()
	mockResolver.On("HostIndex", resolver.NewSet(1)).Return(0).Once()

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(1))).
		Return(nil, errors.New("connection refused"))

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(0))).
		Return(rawResponse(http.StatusOK, `{}`), nil)

	conn := newMockConnection(t, 2, 0, &mockTransport, func(options *ConnectionOptions) {
		options.Resolver = &mockResolver
	})

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)

	mockResolver.AssertExpectations(t)
	mockTransport.AssertExpectations(t)
}

func TestSendRequestTracing(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(0))).
		Return(nil, errors.New("connection refused"))

	mockTransport.On("Send", testutil.MockMatchContext, matchHost(testHost(1))).
		Return(rawResponse(http.StatusOK, `{}`), nil)

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	conn := newMockConnection(t, 2, 0, &mockTransport, func(options *ConnectionOptions) {
		options.TracerProvider = provider
	})

	_, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, SpanRequest, span.Name)
	require.Equal(t, codes.Ok, span.Status.Code)
	require.Len(t, span.Events, 1)
	require.Equal(t, EventFailover, span.Events[0].Name)

	attributes := make(map[string]string)
	for _, attr := range span.Attributes {
		attributes[string(attr.Key)] = attr.Value.Emit()
	}

	require.Equal(t, http.MethodGet, attributes[AttrMethod])
	require.Equal(t, "/_api/version", attributes[AttrEndpoint])
	require.Equal(t, DefaultDatabase, attributes[AttrDatabase])
	require.Equal(t, "200", attributes[AttrStatus])
	require.NotEmpty(t, attributes[AttrRequestID])
}

func TestSendRequestTracingFailure(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).Return(nil, errors.New("connection refused"))

	exporter := tracetest.NewInMemoryExporter()

	conn := newMockConnection(t, 1, 2, &mockTransport, func(options *ConnectionOptions) {
		options.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	})

	_, err := conn.SendRequest(context.Background(), version)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status.Code)
	require.Len(t, spans[0].Events, 2)
	require.Equal(t, EventFailover, spans[0].Events[0].Name)
	require.Equal(t, "exception", spans[0].Events[1].Name)
}

func TestSendRequestTestServerFailover(t *testing.T) {
	down := NewTestServer(t, TestServerOptions{})
	down.Close()

	up := NewTestServer(t, TestServerOptions{Handlers: TestHandlers{}})
	up.options.Handlers.Add(http.MethodGet, "/_api/version", NewTestHandlerWithRequest(t, http.StatusOK,
		[]byte(`{"server":"arango","version":"3.11.0"}`), func(request *http.Request) {
			username, password, ok := request.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "root", username)
			require.Equal(t, "secret", password)
		}))

	conn := newServerConnection(t, down, up)

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.Equal(t, 1, up.Requests(http.MethodGet, "/_api/version"))
	require.Equal(t, 1, up.DatabaseRequests(DefaultDatabase))
}

func TestSendRequestTestServerSocketClosed(t *testing.T) {
	flaky := NewTestServer(t, TestServerOptions{Handlers: TestHandlers{}})
	flaky.options.Handlers.Add(http.MethodGet, "/_api/version", NewTestHandlerWithHijack(t))

	healthy := NewTestServer(t, TestServerOptions{Handlers: TestHandlers{}})
	healthy.options.Handlers.Add(http.MethodGet, "/_api/version", NewTestHandler(t, http.StatusOK, []byte(`{}`)))

	conn := newServerConnection(t, flaky, healthy)

	resp, err := conn.SendRequest(context.Background(), version)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.Equal(t, 1, flaky.TotalRequests())
	require.Equal(t, 1, healthy.TotalRequests())
}

func TestPing(t *testing.T) {
	type test struct {
		name     string
		status   int
		body     string
		checkErr func(t *testing.T, err error)
	}

	tests := []*test{
		{
			name:   "OK",
			status: http.StatusOK,
			body:   `{"result":[]}`,
		},
		{
			name:   "Unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":true,"code":401,"errorNum":401,"errorMessage":"not authorized to execute this request"}`,
			checkErr: func(t *testing.T, err error) {
				var authErr *AuthenticationError
				require.ErrorAs(t, err, &authErr)
				require.Equal(t, http.StatusUnauthorized, authErr.StatusCode())
			},
		},
		{
			name:   "Forbidden",
			status: http.StatusForbidden,
			checkErr: func(t *testing.T, err error) {
				var authErr *AuthenticationError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "InternalServerError",
			status: http.StatusInternalServerError,
			body:   `{"error":true,"code":500,"errorNum":4,"errorMessage":"internal error"}`,
			checkErr: func(t *testing.T, err error) {
				var badResponse *BadResponseError
				require.ErrorAs(t, err, &badResponse)
				require.Equal(t, http.StatusInternalServerError, badResponse.StatusCode())
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := NewTestServer(t, TestServerOptions{Handlers: TestHandlers{}})
			server.options.Handlers.Add(http.MethodGet, "/_api/collection",
				NewTestHandler(t, test.status, []byte(test.body)))

			conn := newServerConnection(t, server)

			status, err := conn.Ping(context.Background())
			require.Equal(t, test.status, status)

			if test.checkErr == nil {
				require.NoError(t, err)
				return
			}

			test.checkErr(t, err)
		})
	}
}

func TestPingConnectionAborted(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Send", testutil.MockMatchContext, mock.Anything).Return(nil, errors.New("connection refused"))

	conn := newMockConnection(t, 2, 0, &mockTransport)

	status, err := conn.Ping(context.Background())
	require.Zero(t, status)
	require.True(t, IsConnectionAborted(err))

	mockTransport.AssertNumberOfCalls(t, "Send", 6)
}

func TestPrepBulkErrResponse(t *testing.T) {
	conn := newMockConnection(t, 1, 0, &transport.MockTransport{})

	parent := newResponse(&transport.Response{
		Method:     http.MethodPost,
		URL:        testHost(0) + "/_db/_system/_api/document/users",
		Headers:    http.Header{"X-Arango-Error-Codes": {`{"1210":1}`}},
		StatusCode: http.StatusAccepted,
		StatusText: "Accepted",
		Body:       []byte(`[{"_key":"a"},{"error":true,"errorNum":1210,"errorMessage":"unique constraint violated"}]`),
	}, true, conn.Serializer(), conn.ErrorTable())

	require.True(t, parent.IsSuccess)

	items, ok := parent.Body.([]any)
	require.True(t, ok)

	first := conn.PrepBulkErrResponse(parent, items[0].(map[string]any))
	require.True(t, first.IsSuccess)
	require.Nil(t, first.ErrorCode)

	second := conn.PrepBulkErrResponse(parent, items[1].(map[string]any))
	require.False(t, second.IsSuccess)
	require.Equal(t, 1210, second.ErrorNum())
	require.Equal(t, "unique constraint violated", second.ErrorMessage)
	require.Equal(t, parent.Method, second.Method)
	require.Equal(t, parent.URL, second.URL)
	require.Equal(t, parent.Headers, second.Headers)
	require.Equal(t, http.StatusAccepted, second.StatusCode)
	require.Equal(t, items[1], second.Body)
	require.JSONEq(t, `{"error":true,"errorNum":1210,"errorMessage":"unique constraint violated"}`,
		string(second.RawBody))
}

func TestConnectionClose(t *testing.T) {
	var mockTransport transport.MockTransport

	mockTransport.On("Close").Return()

	conn := newMockConnection(t, 1, 0, &mockTransport)
	conn.Close()

	mockTransport.AssertCalled(t, "Close")
}
