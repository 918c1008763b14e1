package arango

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arangotools/arangorest/aprov"
	"github.com/arangotools/arangorest/connstr"
	"github.com/arangotools/arangorest/envvar"
	"github.com/arangotools/arangorest/errref"
	"github.com/arangotools/arangorest/errutil"
	"github.com/arangotools/arangorest/log"
	"github.com/arangotools/arangorest/netutil"
	"github.com/arangotools/arangorest/resolver"
	"github.com/arangotools/arangorest/retry"
	"github.com/arangotools/arangorest/tlsutil"
	"github.com/arangotools/arangorest/transport"
)

// ConnectionOptions encapsulates the options for creating a new connection.
type ConnectionOptions struct {
	// ConnectionString lists the coordinators e.g. 'http://root:pass@h1:8529,h2:8529/_db/app'; ignored when
	// 'Endpoints' is non-empty.
	ConnectionString string

	// Endpoints lists the coordinators as individual URLs e.g. 'http://h1:8529', they must all share a scheme.
	Endpoints []string

	// Database is the database requests are sent to, defaults to the database in the connection string or '_system'.
	Database string

	// Username/Password are used for basic authentication, the username defaults to the one in the connection string.
	Username string
	Password string

	// Token is a JWT used for bearer authentication, it takes precedence over basic authentication.
	Token string

	UserAgent string

	// Auth overrides the authentication derived from the options above.
	Auth aprov.Provider

	// TLSConfig is used for 'https' coordinators; 'TLSOptions' is used to build one when this is <nil>.
	TLSConfig  *tls.Config
	TLSOptions *tlsutil.TLSConfigOptions

	// Strategy is the host resolution strategy, ignored when there's a single coordinator.
	Strategy resolver.Strategy

	// Resolver overrides the resolver created from 'Strategy'/'MaxTries', it must resolve the same number of hosts.
	Resolver resolver.HostResolver

	// MaxTries is the number of attempts made for a request before giving up, defaults to three times the number of
	// coordinators.
	MaxTries int

	// FailoverDelay is the delay between failover attempts, by default the next coordinator is tried immediately.
	FailoverDelay time.Duration

	// DisableUnavailableFailover stops treating a 503 response with error number 503 as a connection failure.
	DisableUnavailableFailover bool

	// ClientTimeout is the timeout for each HTTP call, defaults to 'transport.DefaultClientTimeout'.
	ClientTimeout time.Duration

	// RequestTimeout is the timeout for a logical request across all attempts, defaults to 'DefaultRequestTimeout'.
	RequestTimeout time.Duration

	// HTTPTimeouts are the low level transport timeouts.
	HTTPTimeouts netutil.HTTPTimeouts

	// RequestsPerSecond limits the rate at which requests are sent, unlimited when zero.
	RequestsPerSecond float64
	RequestBurst      int

	// Transport overrides the default HTTP transport.
	Transport transport.Transport

	// Serializer overrides the default JSON serializer.
	Serializer Serializer

	// ErrorTable overrides the built in error table.
	ErrorTable *errref.Table

	// TracerProvider is used to trace requests, defaults to the global provider.
	TracerProvider trace.TracerProvider

	Logger log.Logger

	// ReqResLogLevel is the level at which to the dispatching and receiving of requests/responses.
	ReqResLogLevel log.Level
}

// Connection sends requests to a set of coordinators, failing over to the next coordinator when one can't be reached.
//
// NOTE: A connection is safe for concurrent use.
type Connection struct {
	hosts    []string
	prefixes []string
	database string

	resolver   resolver.HostResolver
	transport  transport.Transport
	serializer Serializer
	errorTable *errref.Table
	tracer     trace.Tracer
	logger     log.WrappedLogger

	requestTimeout             time.Duration
	failoverDelay              time.Duration
	disableUnavailableFailover bool
	reqResLogLevel             log.Level
}

// ping is the request used to check connectivity and credentials.
var ping = MustNewRequest(RequestOptions{Method: http.MethodGet, Endpoint: "/_api/collection"})

// NewConnection creates a connection to the coordinators in the given options, no requests are sent.
func NewConnection(options ConnectionOptions) (*Connection, error) {
	logger := log.NewWrappedLogger(options.Logger, "Arango")

	applyEnvironment(&options, logger)

	parsed, err := parseConnectionString(options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	resolved, err := parsed.ResolveContext(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connection string: %w", err)
	}

	hosts := resolved.URLs()
	if len(hosts) == 0 {
		return nil, ErrNoHosts
	}

	database := options.Database
	if database == "" {
		database = resolved.Database
	}

	if database == "" {
		database = DefaultDatabase
	}

	prefixes := make([]string, 0, len(hosts))
	for _, host := range hosts {
		prefixes = append(prefixes, fmt.Sprintf("%s/_db/%s", host, url.PathEscape(database)))
	}

	hostResolver := options.Resolver
	if hostResolver == nil {
		hostResolver = resolver.New(options.Strategy, len(hosts), options.MaxTries)
	}

	if hostResolver.HostCount() != len(hosts) {
		return nil, fmt.Errorf("resolver expects %d hosts but %d were provided", hostResolver.HostCount(), len(hosts))
	}

	conn := &Connection{
		hosts:                      hosts,
		prefixes:                   prefixes,
		database:                   database,
		resolver:                   hostResolver,
		transport:                  options.Transport,
		serializer:                 options.Serializer,
		errorTable:                 options.ErrorTable,
		logger:                     logger,
		requestTimeout:             options.RequestTimeout,
		failoverDelay:              options.FailoverDelay,
		disableUnavailableFailover: options.DisableUnavailableFailover,
		reqResLogLevel:             options.ReqResLogLevel,
	}

	if conn.transport == nil {
		conn.transport, err = newTransport(options, parsed, logger)
		if err != nil {
			return nil, err
		}
	}

	if options.RequestsPerSecond > 0 {
		conn.transport = transport.NewRateLimited(conn.transport, options.RequestsPerSecond, options.RequestBurst)
	}

	if conn.serializer == nil {
		conn.serializer = NewJSONSerializer()
	}

	if conn.errorTable == nil {
		conn.errorTable = errref.Default()
	}

	if conn.requestTimeout <= 0 {
		conn.requestTimeout = DefaultRequestTimeout
	}

	provider := options.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	conn.tracer = provider.Tracer(tracerName)

	logger.Infof("Created connection to database '%s' using %d coordinator(s) with strategy '%s' and %d "+
		"max tries", database, len(hosts), options.Strategy, hostResolver.MaxTries())

	return conn, nil
}

// applyEnvironment overrides the given options using any environment variables which are set.
func applyEnvironment(options *ConnectionOptions, logger log.WrappedLogger) {
	if maxTries, ok := envvar.GetInt(envvar.MaxTries); ok && maxTries > 0 {
		options.MaxTries = maxTries
		logger.Infof("Set max tries to: %d", maxTries)
	}

	if clientTimeout, ok := envvar.GetDuration(envvar.ClientTimeout); ok {
		options.ClientTimeout = clientTimeout
		logger.Infof("Set HTTP client timeout to: %s", clientTimeout)
	}

	if requestTimeout, ok := envvar.GetDuration(envvar.RequestTimeout); ok {
		options.RequestTimeout = requestTimeout
		logger.Infof("Set request timeout to: %s", requestTimeout)
	}

	if failoverDelay, ok := envvar.GetDuration(envvar.FailoverDelay); ok {
		options.FailoverDelay = failoverDelay
		logger.Infof("Set failover delay to: %s", failoverDelay)
	}
}

// parseConnectionString parses either the endpoints, or the connection string in the given options.
func parseConnectionString(options ConnectionOptions) (*connstr.ConnectionString, error) {
	if len(options.Endpoints) != 0 {
		return connstr.ParseEndpoints(options.Endpoints...)
	}

	return connstr.Parse(options.ConnectionString)
}

// newTransport creates the default HTTP transport for the given options.
func newTransport(
	options ConnectionOptions, parsed *connstr.ConnectionString, logger log.WrappedLogger,
) (transport.Transport, error) {
	timeouts, err := envvar.GetHTTPTimeouts(envvar.HTTPTimeouts, options.HTTPTimeouts)
	if err != nil {
		return nil, err
	}

	tlsConfig := options.TLSConfig
	if tlsConfig == nil && options.TLSOptions != nil {
		tlsConfig, err = tlsutil.NewTLSConfig(*options.TLSOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	return transport.NewHTTP(transport.HTTPOptions{
		TLSConfig:      tlsConfig,
		Timeouts:       timeouts,
		ClientTimeout:  options.ClientTimeout,
		Auth:           newAuthProvider(options, parsed),
		Logger:         logger,
		ReqResLogLevel: options.ReqResLogLevel,
	}), nil
}

// newAuthProvider returns the authentication provider for the given options.
func newAuthProvider(options ConnectionOptions, parsed *connstr.ConnectionString) aprov.Provider {
	if options.Auth != nil {
		return options.Auth
	}

	if options.Token != "" {
		return aprov.NewToken(options.Token, options.UserAgent)
	}

	username, password := options.Username, options.Password
	if username == "" {
		username, password = parsed.Username, parsed.Password
	}

	return &aprov.Static{UserAgent: options.UserAgent, Username: username, Password: password}
}

// Hosts returns the base URL of each coordinator.
func (c *Connection) Hosts() []string {
	return append([]string(nil), c.hosts...)
}

// Database returns the name of the database requests are sent to.
func (c *Connection) Database() string {
	return c.database
}

// Serializer returns the serializer used for request and response bodies.
func (c *Connection) Serializer() Serializer {
	return c.serializer
}

// ErrorTable returns the table used to look up error numbers.
func (c *Connection) ErrorTable() *errref.Table {
	return c.errorTable
}

// SendRequest sends the given request, failing over to other coordinators if the chosen one can't be reached.
//
// NOTE: An unsuccessful response isn't an error, the caller should check 'Response.IsSuccess'.
func (c *Connection) SendRequest(ctx context.Context, request *Request) (*Response, error) {
	return c.processRequest(ctx, c.resolver.HostIndex(nil), request)
}

// processRequest sends the given request starting with the given coordinator.
func (c *Connection) processRequest(ctx context.Context, hostIndex int, request *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, SpanRequest, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(
		attribute.String(AttrMethod, request.Method()),
		attribute.String(AttrEndpoint, request.Endpoint()),
		attribute.String(AttrDatabase, c.database),
		attribute.String(AttrRequestID, requestID),
	))
	defer span.End()

	resp, err := c.failover(ctx, span, requestID, hostIndex, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int(AttrStatus, resp.StatusCode))

	if resp.IsSuccess {
		span.SetStatus(codes.Ok, "")
		return resp, nil
	}

	span.SetAttributes(attribute.Int(AttrErrorNum, resp.ErrorNum()))
	span.SetStatus(codes.Error, resp.StatusText)

	return resp, nil
}

// failover runs the attempt loop for a single logical request.
func (c *Connection) failover(
	ctx context.Context, span trace.Span, requestID string, host int, request *Request,
) (*Response, error) {
	body, err := encodeBody(c.serializer, request.Data())
	if err != nil {
		return nil, err
	}

	failover := retry.NewFailover(retry.FailoverOptions[*Response]{
		Resolver: c.resolver,
		Backoff:  retry.Constant(c.failoverDelay),
		Failure:  c.connectionFailure,
		OnFailover: func(ctx *retry.Context, next int, cause error) {
			c.logger.Warnf("(Attempt %d) (%s) Request '%s' to '%s' failed (%s), failing over to '%s': %s",
				ctx.Attempt(), request.Method(), requestID, c.hosts[ctx.Host()], failoverReason(cause), c.hosts[next],
				cause)

			if !netutil.IsMethodIdempotent(request.Method()) {
				c.logger.Warnf("(%s) Request '%s' to endpoint '%s' isn't idempotent and may have been applied by '%s'",
					request.Method(), requestID, log.UserDataValue(request.Endpoint()), c.hosts[ctx.Host()])
			}

			span.AddEvent(EventFailover, trace.WithAttributes(
				attribute.String(AttrHost, c.hosts[next]),
				attribute.Int(AttrAttempt, ctx.Attempt()+1),
			))
		},
	})

	resp, err := failover.Do(ctx, host, func(ctx *retry.Context) (*Response, error) {
		return c.send(ctx, requestID, request, body)
	})
	if err == nil {
		return resp, nil
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		c.logger.Errorf("(%s) Request '%s' to endpoint '%s' failed after %d attempts: %s",
			request.Method(), requestID, log.UserDataValue(request.Endpoint()), exhausted.Attempts(),
			exhausted.Unwrap())

		return nil, &ConnectionAbortedError{maxTries: exhausted.Attempts(), err: exhausted.Unwrap()}
	}

	return nil, fmt.Errorf("failed to send request: %w", err)
}

// send performs a single attempt against the given coordinator.
func (c *Connection) send(ctx *retry.Context, requestID string, request *Request, body []byte) (*Response, error) {
	host := ctx.Host()
	target := c.prefixes[host] + request.Endpoint()

	c.logger.Log(c.reqResLogLevel, "(Attempt %d) (%s) Sending request '%s' to '%s'", ctx.Attempt(),
		request.Method(), requestID, log.UserDataValue(target))

	raw, err := c.transport.Send(ctx, &transport.Request{
		Method:  request.Method(),
		Host:    c.hosts[host],
		URL:     target,
		Params:  request.Params(),
		Headers: request.Headers(),
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	return newResponse(raw, request.Deserialize(), c.serializer, c.errorTable), nil
}

// connectionFailure returns the reason the outcome of an attempt means the coordinator couldn't be reached, in which
// case the request should be sent to another coordinator; <nil> is returned for any other outcome.
func (c *Connection) connectionFailure(resp *Response, err error) error {
	if err != nil {
		if errutil.IsContextError(err) || transport.IsUnknownAuthority(err) || transport.IsPrepare(err) {
			return nil
		}

		return err
	}

	if !c.disableUnavailableFailover && resp.IsUnavailable() {
		return NewServerError(resp)
	}

	return nil
}

// failoverReason describes why a request is being sent to another coordinator.
func failoverReason(cause error) string {
	switch {
	case IsServerError(cause):
		return "coordinator unavailable"
	case netutil.IsNetworkFailure(cause):
		return "coordinator unreachable"
	}

	return "request failed"
}

// PrepBulkErrResponse returns a response for a single item of a bulk operation; the parent's metadata is kept whilst
// the body is replaced by the item, which is then classified on its own.
func (c *Connection) PrepBulkErrResponse(parent *Response, itemBody map[string]any) *Response {
	raw, err := c.serializer.Marshal(itemBody)
	if err != nil {
		c.logger.Warnf("Failed to serialize bulk item for '%s': %s", parent.URL, err)
	}

	resp := &Response{
		Method:     parent.Method,
		URL:        parent.URL,
		Headers:    parent.Headers,
		StatusCode: parent.StatusCode,
		StatusText: parent.StatusText,
		RawBody:    raw,
		Body:       itemBody,
		serializer: c.serializer,
	}

	resp.classify(c.errorTable)

	return resp
}

// Ping checks that a coordinator can be reached with the configured credentials, returning the status code.
func (c *Connection) Ping(ctx context.Context) (int, error) {
	resp, err := c.SendRequest(ctx, ping)
	if err != nil {
		return 0, fmt.Errorf("failed to ping: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return resp.StatusCode, &AuthenticationError{statusCode: resp.StatusCode, url: resp.URL}
	}

	if !resp.IsSuccess {
		reason := resp.ErrorMessage
		if reason == "" {
			reason = strings.ToLower(resp.StatusText)
		}

		return resp.StatusCode, &BadResponseError{
			method:     resp.Method,
			url:        resp.URL,
			statusCode: resp.StatusCode,
			reason:     reason,
		}
	}

	return resp.StatusCode, nil
}

// Close releases any idle connections, in-flight requests are unaffected.
func (c *Connection) Close() {
	c.transport.Close()
}
