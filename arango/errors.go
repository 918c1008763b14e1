package arango

import (
	"errors"
	"fmt"

	"github.com/arangotools/arangorest/errref"
)

var (
	// ErrInvalidMethod is returned when building a request with an unsupported HTTP method.
	ErrInvalidMethod = errors.New("invalid request method")

	// ErrInvalidEndpoint is returned when building a request with an endpoint which isn't a server relative URL path.
	ErrInvalidEndpoint = errors.New("invalid request endpoint, must be a path beginning with '/'")

	// ErrNoHosts is returned when a connection is created without any coordinators.
	ErrNoHosts = errors.New("no hosts provided")

	// ErrInvalidCursorType is returned when creating a cursor of an unknown type.
	ErrInvalidCursorType = errors.New("invalid cursor type")

	// ErrCursorCountNotEnabled is returned by 'Cursor.Len' when the query wasn't run with 'count' enabled.
	ErrCursorCountNotEnabled = errors.New("cursor count not enabled")

	// ErrCursorEmpty is returned when popping from a cursor with an empty batch.
	ErrCursorEmpty = errors.New("current batch is empty")

	// ErrNoMoreDocuments is returned once a cursor has been fully consumed.
	ErrNoMoreDocuments = errors.New("no more documents")

	// ErrJobPending is returned when fetching the result of a job which hasn't finished yet.
	ErrJobPending = errors.New("job is still pending")

	// ErrBatchCommitted is returned when queueing a request against a batch which has already been committed.
	ErrBatchCommitted = errors.New("batch has already been committed")

	// ErrTransactionFinished is returned when submitting a request to a transaction which was committed or aborted.
	ErrTransactionFinished = errors.New("transaction has already been committed or aborted")

	// ErrDeferred is wrapped by the error returned when an executor accepts a request without producing its response.
	ErrDeferred = errors.New("request deferred")
)

// ServerError is returned when a coordinator responded, but the response isn't a success.
type ServerError struct {
	method     string
	url        string
	statusCode int
	errorCode  int
	message    string
	entry      errref.Entry
	response   *Response
}

// NewServerError returns an error describing the given unsuccessful response.
func NewServerError(resp *Response) *ServerError {
	message := resp.ErrorMessage
	if message == "" {
		message = resp.StatusText
	}

	return &ServerError{
		method:     resp.Method,
		url:        resp.URL,
		statusCode: resp.StatusCode,
		errorCode:  resp.ErrorNum(),
		message:    message,
		entry:      resp.Error,
		response:   resp,
	}
}

func (e *ServerError) Error() string {
	if e.errorCode == errref.CodeNoError {
		return fmt.Sprintf("'%s' request to '%s' failed with status code %d: %s", e.method, e.url, e.statusCode,
			e.message)
	}

	return fmt.Sprintf("'%s' request to '%s' failed with status code %d: [%d] %s", e.method, e.url, e.statusCode,
		e.errorCode, e.message)
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int {
	return e.statusCode
}

// ErrorCode returns the ArangoDB error number, zero if the response didn't carry one.
func (e *ServerError) ErrorCode() int {
	return e.errorCode
}

// Message returns the error message sent by the server, or the status text if it didn't send one.
func (e *ServerError) Message() string {
	return e.message
}

// Entry returns the error table entry for the error number.
func (e *ServerError) Entry() errref.Entry {
	return e.entry
}

// Response returns the response which caused the error.
func (e *ServerError) Response() *Response {
	return e.response
}

// IsServerError returns a boolean indicating whether the given error is a 'ServerError'.
func IsServerError(err error) bool {
	var serverError *ServerError
	return errors.As(err, &serverError)
}

// IsErrorCode returns a boolean indicating whether the given error is a 'ServerError' with the given error number.
func IsErrorCode(err error, code int) bool {
	var serverError *ServerError
	return errors.As(err, &serverError) && serverError.errorCode == code
}

// ConnectionAbortedError is returned when a request failed to reach a coordinator after exhausting every attempt.
type ConnectionAbortedError struct {
	maxTries int
	err      error
}

func (e *ConnectionAbortedError) Error() string {
	msg := fmt.Sprintf("failed to connect to any coordinator after %d attempts", e.maxTries)
	if e.err != nil {
		msg += fmt.Sprintf(": %s", e.err)
	}

	return msg
}

func (e *ConnectionAbortedError) Unwrap() error {
	return e.err
}

// MaxTries returns the number of attempts which were made.
func (e *ConnectionAbortedError) MaxTries() int {
	return e.maxTries
}

// IsConnectionAborted returns a boolean indicating whether the given error is a 'ConnectionAbortedError'.
func IsConnectionAborted(err error) bool {
	var aborted *ConnectionAbortedError
	return errors.As(err, &aborted)
}

// DeferredError is returned by the async and batch executors, whose responses only become available through the job
// identified by 'JobID'.
type DeferredError struct {
	context ExecutionContext
	jobID   string
}

func (e *DeferredError) Error() string {
	if e.jobID == "" {
		return fmt.Sprintf("%s: response discarded by %s executor", ErrDeferred, e.context)
	}

	return fmt.Sprintf("%s: response available from %s job '%s'", ErrDeferred, e.context, e.jobID)
}

func (e *DeferredError) Unwrap() error {
	return ErrDeferred
}

// Context returns the execution context which deferred the request.
func (e *DeferredError) Context() ExecutionContext {
	return e.context
}

// JobID returns the identifier of the job which will produce the response, empty if the result is discarded.
func (e *DeferredError) JobID() string {
	return e.jobID
}

// CursorStateError is returned when a cursor operation isn't valid in the cursor's current state.
type CursorStateError struct {
	reason string
}

func (e *CursorStateError) Error() string {
	return fmt.Sprintf("invalid cursor state: %s", e.reason)
}

// AuthenticationError is returned when pinging a coordinator which rejected the provided credentials.
type AuthenticationError struct {
	statusCode int
	url        string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("failed to authenticate with '%s', status code %d; check that your credentials are correct",
		e.url, e.statusCode)
}

// StatusCode returns the HTTP status code, either 401 or 403.
func (e *AuthenticationError) StatusCode() int {
	return e.statusCode
}

// BadResponseError is returned when a coordinator responds with an unexpected status code.
type BadResponseError struct {
	method     string
	url        string
	statusCode int
	reason     string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("unexpected response to '%s' request to '%s', status code %d: %s", e.method, e.url,
		e.statusCode, e.reason)
}

// StatusCode returns the HTTP status code.
func (e *BadResponseError) StatusCode() int {
	return e.statusCode
}
