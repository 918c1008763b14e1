package transport

import (
	"errors"
	"fmt"
)

// UnknownAuthorityError is returned when a coordinator presents a certificate signed by an unknown authority; it's not
// worth trying other coordinators since they'll be using certificates from the same authority.
type UnknownAuthorityError struct {
	inner error
}

func (e *UnknownAuthorityError) Error() string {
	return fmt.Sprintf("%s; if you are using self-signed certificates, supply the certificate authority using "+
		"'tlsutil.TLSConfigOptions.ServerCAs' or disable verification (which is vulnerable to man-in-the-middle "+
		"attacks) using 'NoSSLVerify'", e.inner)
}

func (e *UnknownAuthorityError) Unwrap() error {
	return e.inner
}

// IsUnknownAuthority returns a boolean indicating whether the given error is an 'UnknownAuthorityError'.
func IsUnknownAuthority(err error) bool {
	var unknownAuthority *UnknownAuthorityError
	return errors.As(err, &unknownAuthority)
}

// PrepareError is returned when a request can't be converted into an HTTP request e.g. because its URL is malformed;
// the coordinator was never contacted and sending the request elsewhere won't help.
type PrepareError struct {
	inner error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("failed to prepare request: %s", e.inner)
}

func (e *PrepareError) Unwrap() error {
	return e.inner
}

// IsPrepare returns a boolean indicating whether the given error is a 'PrepareError'.
func IsPrepare(err error) bool {
	var prepare *PrepareError
	return errors.As(err, &prepare)
}

// SocketClosedInFlightError is returned if the client socket was closed during an active request. This is usually due
// to socket being closed by the coordinator e.g. because it's shutting down.
type SocketClosedInFlightError struct {
	method string
	url    string
	inner  error
}

func (e *SocketClosedInFlightError) Error() string {
	return fmt.Sprintf("error executing '%s' request to '%s' socket closed in flight", e.method, e.url)
}

func (e *SocketClosedInFlightError) Unwrap() error {
	return e.inner
}
