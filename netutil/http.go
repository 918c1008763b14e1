// Package netutil provides network related utility functions used when talking to the ArangoDB HTTP API.
package netutil

import (
	"crypto/tls"
	"net"
	"net/http"

	"github.com/arangotools/arangorest/ptrutil"
)

// NewHTTPTransport returns a new HTTP transport using the given TLS config and timeouts; any <nil> timeout is replaced
// with a default value.
func NewHTTPTransport(tlsConfig *tls.Config, timeouts HTTPTimeouts) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   ptrutil.ValueOrDefault(timeouts.Dialer, defaultDialerTimeout),
		KeepAlive: ptrutil.ValueOrDefault(timeouts.KeepAlive, defaultDialerKeepAlive),
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		TLSClientConfig:       tlsConfig,
		DialContext:           dialer.DialContext,
		IdleConnTimeout:       ptrutil.ValueOrDefault(timeouts.TransportIdleConn, defaultIdleConnTimeout),
		ExpectContinueTimeout: ptrutil.ValueOrDefault(timeouts.TransportContinue, defaultContinueTimeout),
		ResponseHeaderTimeout: ptrutil.ValueOrDefault(timeouts.TransportResponseHeader, defaultResponseHeaderTimeout),
		TLSHandshakeTimeout:   ptrutil.ValueOrDefault(timeouts.TransportTLSHandshake, defaultTLSHandshakeTimeout),
	}
}
