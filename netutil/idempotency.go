package netutil

import "net/http"

// IsMethodIdempotent returns a boolean indicating whether the given method is idempotent; failing over a request
// which isn't may result in it being applied more than once.
func IsMethodIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}
