package arango

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// TransactionStatus is the status of a stream transaction.
type TransactionStatus string

const (
	TransactionRunning   TransactionStatus = "running"
	TransactionCommitted TransactionStatus = "committed"
	TransactionAborted   TransactionStatus = "aborted"
)

// TransactionOptions encapsulates the options for beginning a stream transaction.
type TransactionOptions struct {
	// Read, Write and Exclusive name the collections the transaction will access.
	Read      []string
	Write     []string
	Exclusive []string

	WaitForSync        bool
	AllowImplicit      *bool
	LockTimeout        int
	MaxTransactionSize int
	AllowDirtyRead     bool
}

// WithCollectionsOf returns a copy of the options which also declares the collections accessed by the given requests.
func (t TransactionOptions) WithCollectionsOf(requests ...*Request) TransactionOptions {
	merge := func(names []string, more []string) []string {
		merged := slices.Clone(names)

		for _, name := range more {
			if !slices.Contains(merged, name) {
				merged = append(merged, name)
			}
		}

		return merged
	}

	for _, request := range requests {
		t.Read = merge(t.Read, request.read)
		t.Write = merge(t.Write, request.write)
		t.Exclusive = merge(t.Exclusive, request.exclusive)
	}

	return t
}

// beginTransaction is the body sent to begin a stream transaction.
type beginTransaction struct {
	Collections struct {
		Read      []string `json:"read,omitempty"`
		Write     []string `json:"write,omitempty"`
		Exclusive []string `json:"exclusive,omitempty"`
	} `json:"collections"`
	WaitForSync        bool  `json:"waitForSync,omitempty"`
	AllowImplicit      *bool `json:"allowImplicit,omitempty"`
	LockTimeout        int   `json:"lockTimeout,omitempty"`
	MaxTransactionSize int   `json:"maxTransactionSize,omitempty"`
}

// transactionResult is the body returned by the transaction endpoints.
type transactionResult struct {
	Result struct {
		ID     string            `json:"id"`
		Status TransactionStatus `json:"status"`
	} `json:"result"`
}

// TransactionExecutor sends requests within a stream transaction.
type TransactionExecutor struct {
	conn     *Connection
	id       string
	dirty    bool
	finished atomic.Bool
}

var _ Executor = (*TransactionExecutor)(nil)

// BeginTransaction begins a stream transaction on the server, returning an executor for requests within it.
func BeginTransaction(ctx context.Context, conn *Connection, options TransactionOptions) (*TransactionExecutor, error) {
	var body beginTransaction

	body.Collections.Read = options.Read
	body.Collections.Write = options.Write
	body.Collections.Exclusive = options.Exclusive
	body.WaitForSync = options.WaitForSync
	body.AllowImplicit = options.AllowImplicit
	body.LockTimeout = options.LockTimeout
	body.MaxTransactionSize = options.MaxTransactionSize

	request, err := NewRequest(RequestOptions{
		Method:    http.MethodPost,
		Endpoint:  "/_api/transaction/begin",
		Data:      body,
		Read:      options.Read,
		Write:     options.Write,
		Exclusive: options.Exclusive,
	})
	if err != nil {
		return nil, err
	}

	if options.AllowDirtyRead {
		request = request.WithDirtyRead()
	}

	result, err := Execute(ctx, NewDefaultExecutor(conn), request, Decoded[transactionResult]())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &TransactionExecutor{conn: conn, id: result.Result.ID, dirty: options.AllowDirtyRead}, nil
}

func (t *TransactionExecutor) Context() ExecutionContext {
	return ContextTransaction
}

func (t *TransactionExecutor) Connection() *Connection {
	return t.conn
}

// ID returns the server side transaction identifier.
func (t *TransactionExecutor) ID() string {
	return t.id
}

// Submit sends the given request within the transaction.
func (t *TransactionExecutor) Submit(ctx context.Context, request *Request) (*Response, error) {
	if t.finished.Load() {
		return nil, ErrTransactionFinished
	}

	request = request.WithHeader(HeaderTransactionID, t.id)

	if t.dirty {
		request = request.WithDirtyRead()
	}

	return t.conn.SendRequest(ctx, request)
}

// Status returns the status of the transaction on the server.
func (t *TransactionExecutor) Status(ctx context.Context) (TransactionStatus, error) {
	result, err := t.send(ctx, http.MethodGet)
	if err != nil {
		return "", fmt.Errorf("failed to get status of transaction '%s': %w", t.id, err)
	}

	return result.Result.Status, nil
}

// Commit the transaction, no further requests may be submitted.
func (t *TransactionExecutor) Commit(ctx context.Context) error {
	_, err := t.send(ctx, http.MethodPut)
	if err != nil {
		return fmt.Errorf("failed to commit transaction '%s': %w", t.id, err)
	}

	t.finished.Store(true)

	return nil
}

// Abort the transaction, no further requests may be submitted.
func (t *TransactionExecutor) Abort(ctx context.Context) error {
	_, err := t.send(ctx, http.MethodDelete)
	if err != nil {
		return fmt.Errorf("failed to abort transaction '%s': %w", t.id, err)
	}

	t.finished.Store(true)

	return nil
}

// send sends a request to the transaction endpoint, outside of the transaction itself.
func (t *TransactionExecutor) send(ctx context.Context, method string) (transactionResult, error) {
	request, err := NewRequest(RequestOptions{Method: method, Endpoint: "/_api/transaction/" + t.id})
	if err != nil {
		return transactionResult{}, err
	}

	return Execute(ctx, NewDefaultExecutor(t.conn), request, Decoded[transactionResult]())
}
