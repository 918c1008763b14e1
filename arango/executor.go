package arango

import (
	"context"
)

// ExecutionContext identifies the way in which an executor runs requests.
type ExecutionContext string

const (
	ContextDefault     ExecutionContext = "default"
	ContextAsync       ExecutionContext = "async"
	ContextBatch       ExecutionContext = "batch"
	ContextTransaction ExecutionContext = "transaction"
)

// ResponseHandler converts a response into a typed result, returning an error if the response isn't acceptable.
type ResponseHandler[T any] func(resp *Response) (T, error)

// Executor runs requests over a connection in a given execution context.
type Executor interface {
	// Context returns the execution context of the executor.
	Context() ExecutionContext

	// Connection returns the connection requests are sent over.
	Connection() *Connection

	// Submit sends the given request, returning the response as is.
	Submit(ctx context.Context, request *Request) (*Response, error)
}

// Execute the given request using the executor, passing the response to the handler.
func Execute[T any](ctx context.Context, executor Executor, request *Request, handler ResponseHandler[T]) (T, error) {
	resp, err := executor.Submit(ctx, request)
	if err != nil {
		return *new(T), err
	}

	return handler(resp)
}

// DefaultExecutor sends requests directly over the connection.
type DefaultExecutor struct {
	conn *Connection
}

var _ Executor = (*DefaultExecutor)(nil)

// NewDefaultExecutor returns an executor which sends requests directly over the given connection.
func NewDefaultExecutor(conn *Connection) *DefaultExecutor {
	return &DefaultExecutor{conn: conn}
}

func (d *DefaultExecutor) Context() ExecutionContext {
	return ContextDefault
}

func (d *DefaultExecutor) Connection() *Connection {
	return d.conn
}

func (d *DefaultExecutor) Submit(ctx context.Context, request *Request) (*Response, error) {
	return d.conn.SendRequest(ctx, request)
}

// Success is a response handler which returns an error for any unsuccessful response and discards the body.
func Success(resp *Response) (struct{}, error) {
	if !resp.IsSuccess {
		return struct{}{}, NewServerError(resp)
	}

	return struct{}{}, nil
}

// Decoded returns a response handler which decodes successful responses into a value of the given type.
func Decoded[T any]() ResponseHandler[T] {
	return func(resp *Response) (T, error) {
		var decoded T

		if !resp.IsSuccess {
			return decoded, NewServerError(resp)
		}

		if err := resp.Decode(&decoded); err != nil {
			return decoded, err
		}

		return decoded, nil
	}
}
