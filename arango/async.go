package arango

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// AsyncJobStatus is the status of an asynchronous job on the server.
type AsyncJobStatus string

const (
	AsyncJobPending AsyncJobStatus = "pending"
	AsyncJobDone    AsyncJobStatus = "done"
)

// AsyncExecutor sends requests which are queued and executed asynchronously by the server.
type AsyncExecutor struct {
	conn         *Connection
	returnResult bool
}

var _ Executor = (*AsyncExecutor)(nil)

// NewAsyncExecutor returns an executor for asynchronous requests; when 'returnResult' is false the server discards
// the results and no jobs are returned.
func NewAsyncExecutor(conn *Connection, returnResult bool) *AsyncExecutor {
	return &AsyncExecutor{conn: conn, returnResult: returnResult}
}

func (a *AsyncExecutor) Context() ExecutionContext {
	return ContextAsync
}

func (a *AsyncExecutor) Connection() *Connection {
	return a.conn
}

// Submit queues the request on the server, returning the accepted response along with a 'DeferredError' which
// carries the id of the job producing the real response.
func (a *AsyncExecutor) Submit(ctx context.Context, request *Request) (*Response, error) {
	resp, id, err := a.queue(ctx, request)
	if err != nil {
		return nil, err
	}

	return resp, &DeferredError{context: ContextAsync, jobID: id}
}

// queue sends the request stamped for asynchronous execution, returning the job id when results are kept.
func (a *AsyncExecutor) queue(ctx context.Context, request *Request) (*Response, string, error) {
	mode := "true"
	if a.returnResult {
		mode = "store"
	}

	resp, err := a.conn.SendRequest(ctx, request.WithHeader(HeaderAsync, mode))
	if err != nil {
		return nil, "", fmt.Errorf("failed to queue async request: %w", err)
	}

	if !resp.IsSuccess {
		return nil, "", NewServerError(resp)
	}

	if resp.StatusCode != http.StatusAccepted {
		return nil, "", &BadResponseError{
			method:     resp.Method,
			url:        resp.URL,
			statusCode: resp.StatusCode,
			reason:     "expected the request to be accepted for asynchronous execution",
		}
	}

	if !a.returnResult {
		return resp, "", nil
	}

	id := resp.Headers.Get(HeaderAsyncID)
	if id == "" {
		return nil, "", &BadResponseError{
			method:     resp.Method,
			url:        resp.URL,
			statusCode: resp.StatusCode,
			reason:     fmt.Sprintf("missing '%s' header", HeaderAsyncID),
		}
	}

	return resp, id, nil
}

// AsyncJob is a handle to a request executed asynchronously by the server, the handler is applied to its result.
type AsyncJob[T any] struct {
	id      string
	conn    *Connection
	handler ResponseHandler[T]
}

// NewAsyncJob returns a handle to an existing server side job e.g. one identified by a 'DeferredError'.
func NewAsyncJob[T any](conn *Connection, id string, handler ResponseHandler[T]) *AsyncJob[T] {
	return &AsyncJob[T]{id: id, conn: conn, handler: handler}
}

// ExecuteAsync queues the given request on the server, returning a job which may be used to retrieve the result.
//
// NOTE: The returned job is <nil> if the executor doesn't keep results.
func ExecuteAsync[T any](
	ctx context.Context, executor *AsyncExecutor, request *Request, handler ResponseHandler[T],
) (*AsyncJob[T], error) {
	_, id, err := executor.queue(ctx, request)
	if err != nil || id == "" {
		return nil, err
	}

	return NewAsyncJob(executor.conn, id, handler), nil
}

// ID returns the server side job identifier.
func (j *AsyncJob[T]) ID() string {
	return j.id
}

// send sends a request to the given job endpoint.
func (j *AsyncJob[T]) send(ctx context.Context, method, suffix string) (*Response, error) {
	request, err := NewRequest(RequestOptions{Method: method, Endpoint: "/_api/job/" + j.id + suffix})
	if err != nil {
		return nil, err
	}

	resp, err := j.conn.SendRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to send request for job '%s': %w", j.id, err)
	}

	return resp, nil
}

// Status returns the status of the job, a job which no longer exists results in a 'ServerError'.
func (j *AsyncJob[T]) Status(ctx context.Context) (AsyncJobStatus, error) {
	resp, err := j.send(ctx, http.MethodGet, "")
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return AsyncJobPending, nil
	case resp.IsSuccess:
		return AsyncJobDone, nil
	}

	return "", NewServerError(resp)
}

// Result returns the result of the job, 'ErrJobPending' is returned if the job hasn't finished.
//
// NOTE: The server discards the result once it has been returned.
func (j *AsyncJob[T]) Result(ctx context.Context) (T, error) {
	resp, err := j.send(ctx, http.MethodPut, "")
	if err != nil {
		return *new(T), err
	}

	// The job id header is only present when the response is the result of the job itself
	if resp.Headers.Get(HeaderAsyncID) != "" {
		return j.handler(resp)
	}

	if resp.StatusCode == http.StatusNoContent {
		return *new(T), ErrJobPending
	}

	return *new(T), NewServerError(resp)
}

// Wait polls the status of the job at the given interval until it's done, then returns its result.
func (j *AsyncJob[T]) Wait(ctx context.Context, interval time.Duration) (T, error) {
	if interval <= 0 {
		interval = DefaultJobPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := j.Status(ctx)
		if err != nil {
			return *new(T), err
		}

		if status == AsyncJobDone {
			return j.Result(ctx)
		}

		select {
		case <-ctx.Done():
			return *new(T), ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cancel the job, returns false if the job no longer exists and missing jobs are being ignored.
func (j *AsyncJob[T]) Cancel(ctx context.Context, ignoreMissing bool) (bool, error) {
	return j.modify(ctx, http.MethodPut, "/cancel", ignoreMissing)
}

// Clear deletes the job and its result from the server, returns false if the job no longer exists and missing jobs
// are being ignored.
func (j *AsyncJob[T]) Clear(ctx context.Context, ignoreMissing bool) (bool, error) {
	return j.modify(ctx, http.MethodDelete, "", ignoreMissing)
}

func (j *AsyncJob[T]) modify(ctx context.Context, method, suffix string, ignoreMissing bool) (bool, error) {
	resp, err := j.send(ctx, method, suffix)
	if err != nil {
		return false, err
	}

	if resp.IsSuccess {
		return true, nil
	}

	if resp.StatusCode == http.StatusNotFound && ignoreMissing {
		return false, nil
	}

	return false, NewServerError(resp)
}
