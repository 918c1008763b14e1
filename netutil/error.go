package netutil

import (
	"errors"
	"net"

	"github.com/arangotools/arangorest/errutil"
)

// networkFailureMessages are the messages of the errors returned by the standard library when a coordinator can't be
// reached, or drops the connection mid request.
var networkFailureMessages = []string{
	"bad record MAC",                   // src/crypto/tls/alert.go
	"broken pipe",                      // src/syscall/zerrors_linux_amd64.go
	"connection refused",               // src/syscall/zerrors_linux_amd64.go
	"connection reset",                 // src/syscall/zerrors_linux_amd64.go
	"connection timed out",             // src/syscall/zerrors_linux_amd64.go
	"i/o timeout",                      // src/net/net.go
	"net/http: TLS handshake timeout",  // src/net/http/transport.go
	"no such host",                     // src/net/net.go
	"server closed idle connection",    // src/net/http/transport.go
	"stream error:",                    // src/net/http/h2_bundle.go
	"transport connection broken",      // src/net/http/transport.go
	"unexpected EOF",                   // src/io/io.go
	"use of closed network connection", // src/internal/poll/fd.go
}

// IsNetworkFailure returns a boolean indicating whether the given error means the coordinator couldn't be reached (or
// dropped the connection) as opposed to rejecting the request.
//
// NOTE: Cancelled contexts and expired deadlines are the caller giving up, not network failures.
func IsNetworkFailure(err error) bool {
	if err == nil || errutil.IsContextError(err) {
		return false
	}

	var (
		dnsErr *net.DNSError
		opErr  *net.OpError
	)

	switch {
	case errors.As(err, &dnsErr):
		return true
	case errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "read"):
		return true
	}

	return errutil.ContainsAny(err, networkFailureMessages...)
}
