package arango

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/arangotools/arangorest/errref"
	"github.com/arangotools/arangorest/netutil"
	"github.com/arangotools/arangorest/transport"
)

// Response is a classified response from a coordinator.
type Response struct {
	Method     string
	URL        string
	Headers    http.Header
	StatusCode int
	StatusText string

	// RawBody is the body exactly as received.
	RawBody []byte

	// Body is the generic decoded body, <nil> if deserialization was disabled or the body couldn't be decoded.
	Body any

	// ErrorCode is the 'errorNum' from the error envelope, <nil> if the body didn't carry one.
	ErrorCode    *int
	ErrorMessage string

	// IsSuccess is true for a 2xx status without an error code.
	IsSuccess bool

	// Error is the error table entry for 'ErrorCode'; 'errref.Empty' if there's no error code and 'errref.Unknown' if
	// the code isn't in the table.
	Error errref.Entry

	serializer Serializer
}

// errorEnvelope is the shape of an ArangoDB error body.
type errorEnvelope struct {
	Error        bool   `json:"error"`
	ErrorNum     *int   `json:"errorNum"`
	ErrorMessage string `json:"errorMessage"`
	Code         int    `json:"code"`
}

// newResponse classifies the given raw response.
func newResponse(raw *transport.Response, deserialize bool, serializer Serializer, table *errref.Table) *Response {
	resp := &Response{
		Method:     raw.Method,
		URL:        raw.URL,
		Headers:    raw.Headers,
		StatusCode: raw.StatusCode,
		StatusText: raw.StatusText,
		RawBody:    raw.Body,
		serializer: serializer,
	}

	if deserialize && len(raw.Body) != 0 {
		var body any
		if serializer.Unmarshal(raw.Body, &body) == nil {
			resp.Body = body
		}
	}

	resp.classify(table)

	return resp
}

// classify extracts the error envelope, if any, and sets 'IsSuccess'.
func (r *Response) classify(table *errref.Table) {
	r.ErrorCode, r.ErrorMessage, r.Error = nil, "", errref.Empty

	trimmed := bytes.TrimSpace(r.RawBody)
	if len(trimmed) != 0 && trimmed[0] == '{' {
		var envelope errorEnvelope
		if r.serializer.Unmarshal(trimmed, &envelope) == nil && envelope.ErrorNum != nil {
			r.ErrorCode = envelope.ErrorNum
			r.ErrorMessage = envelope.ErrorMessage
		}
	}

	r.IsSuccess = netutil.IsSuccessStatus(r.StatusCode) && r.ErrorCode == nil

	if r.ErrorCode == nil {
		return
	}

	r.Error, _ = table.Lookup(*r.ErrorCode)
}

// Decode the raw body into the given value.
func (r *Response) Decode(v any) error {
	if err := r.serializer.Unmarshal(r.RawBody, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	return nil
}

// IsUnavailable returns a boolean indicating whether the response has the signature of a coordinator which is
// unavailable i.e. both the status code and error number are 503.
func (r *Response) IsUnavailable() bool {
	return r.StatusCode == http.StatusServiceUnavailable && r.ErrorCode != nil &&
		*r.ErrorCode == errref.CodeHTTPUnavailable
}

// ErrorNum returns the error number, or zero if there isn't one.
func (r *Response) ErrorNum() int {
	if r.ErrorCode == nil {
		return errref.CodeNoError
	}

	return *r.ErrorCode
}
