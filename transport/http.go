package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/arangotools/arangorest/aprov"
	"github.com/arangotools/arangorest/log"
	"github.com/arangotools/arangorest/netutil"
)

// DefaultClientTimeout is the default timeout for a single HTTP call.
const DefaultClientTimeout = time.Minute

// HTTPOptions encapsulates the options for creating a new HTTP transport.
type HTTPOptions struct {
	// TLSConfig is used for 'https' hosts, may be <nil>.
	TLSConfig *tls.Config

	// Timeouts are the low level transport timeouts, any <nil> values are defaulted.
	Timeouts netutil.HTTPTimeouts

	// ClientTimeout is the timeout for each individual HTTP call, defaults to 'DefaultClientTimeout'.
	ClientTimeout time.Duration

	// Auth authenticates each request, requests are unauthenticated if <nil>.
	Auth aprov.Provider

	// Logger is the logger used for request/response logging, defaults to a no-op logger.
	Logger log.Logger

	// ReqResLogLevel is the level at which to the dispatching and receiving of requests/responses.
	ReqResLogLevel log.Level
}

// HTTP is a transport which sends requests using the standard library HTTP client, lazily creating one client per
// host which is reused for every subsequent request to that host.
type HTTP struct {
	options HTTPOptions
	logger  log.WrappedLogger

	lock    sync.Mutex
	clients map[string]*http.Client
}

var _ Transport = (*HTTP)(nil)

// NewHTTP returns a new HTTP transport.
func NewHTTP(options HTTPOptions) *HTTP {
	if options.ClientTimeout <= 0 {
		options.ClientTimeout = DefaultClientTimeout
	}

	return &HTTP{
		options: options,
		logger:  log.NewWrappedLogger(options.Logger, "HTTP"),
		clients: make(map[string]*http.Client),
	}
}

// client returns the HTTP client for the given host, creating it if this is the first request to that host.
func (h *HTTP) client(host string) *http.Client {
	h.lock.Lock()
	defer h.lock.Unlock()

	client, ok := h.clients[host]
	if ok {
		return client
	}

	var config *tls.Config
	if strings.HasPrefix(host, "https://") {
		config = h.options.TLSConfig
	}

	client = &http.Client{
		Timeout:   h.options.ClientTimeout,
		Transport: netutil.NewHTTPTransport(config, h.options.Timeouts),
	}

	h.clients[host] = client

	return client
}

// Send the given request, reading the entire response body.
func (h *HTTP) Send(ctx context.Context, request *Request) (*Response, error) {
	req, err := h.prepare(ctx, request)
	if err != nil {
		return nil, &PrepareError{inner: err}
	}

	h.logger.Log(h.options.ReqResLogLevel, "(%s) Dispatching request to '%s'", req.Method, req.URL)

	resp, err := h.client(request.Host).Do(req)
	if err != nil {
		return nil, h.handleError(req, err)
	}
	defer resp.Body.Close()

	h.logger.Log(h.options.ReqResLogLevel, "(%s) (%d) Received response from '%s'", req.Method,
		resp.StatusCode, req.URL)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, h.handleError(req, fmt.Errorf("failed to read response body: %w", err))
	}

	return &Response{
		Method:     request.Method,
		URL:        request.URL,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       body,
	}, nil
}

// prepare converts the request into a raw HTTP request which can be dispatched to the coordinator.
func (h *HTTP) prepare(ctx context.Context, request *Request) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, request.Method, request.URL, bytes.NewReader(request.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if len(request.Params) != 0 {
		req.URL.RawQuery = request.Params.Encode()
	}

	for key, value := range request.Headers {
		req.Header.Set(key, value)
	}

	if h.options.Auth == nil {
		return req, nil
	}

	h.options.Auth.SetAuth(request.Host, req)

	if userAgent := h.options.Auth.GetUserAgent(); userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	return req, nil
}

// handleError logs and wraps errors returned whilst sending the given request.
func (h *HTTP) handleError(req *http.Request, err error) error {
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return fmt.Errorf("failed to perform request: %w", ctxErr)
	}

	h.logger.Errorf("(%s) Failed to perform request to '%s': %s", req.Method, req.URL, err)

	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return &UnknownAuthorityError{inner: err}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SocketClosedInFlightError{method: req.Method, url: req.URL.String(), inner: err}
	}

	return fmt.Errorf("failed to perform request: %w", err)
}

// Close releases the idle connections of every client.
func (h *HTTP) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, client := range h.clients {
		client.CloseIdleConnections()
	}
}
