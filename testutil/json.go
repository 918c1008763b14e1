// Package testutil contains helpers shared by the tests in this module.
package testutil

import (
	"io"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

// json mirrors the standard library so payloads written by tests match what a server would send.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON marshals the provided value to JSON fatally terminating the current test in the event of a failure.
func MarshalJSON(t *testing.T, data any) []byte {
	dJSON, err := json.Marshal(data)
	require.NoError(t, err)

	return dJSON
}

// EncodeJSON marshals then writes the provided value to the given writer fatally terminating the current test in the
// event of a failure.
func EncodeJSON(t *testing.T, writer io.Writer, data any) {
	require.NoError(t, json.NewEncoder(writer).Encode(data))
}

// DecodeJSON decodes data from the provided reader into the given value fatally terminating the current test in the
// event of a failure.
func DecodeJSON(t *testing.T, reader io.Reader, data any) {
	require.NoError(t, json.NewDecoder(reader).Decode(data))
}
