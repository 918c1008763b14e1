package netutil

import "net/http"

// IsSuccessStatus returns a boolean indicating whether the given status code is in the 2xx range.
func IsSuccessStatus(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
