package netutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMethodIdempotent(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete} {
		require.True(t, IsMethodIdempotent(method), method)
	}

	for _, method := range []string{http.MethodPost, http.MethodPatch} {
		require.False(t, IsMethodIdempotent(method), method)
	}
}
