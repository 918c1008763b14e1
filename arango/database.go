package arango

import (
	"context"
	"fmt"
	"net/http"
)

// QueryOptions encapsulates the options for running an AQL query.
type QueryOptions struct {
	// Count requests the total number of results, see 'Cursor.Count'.
	Count bool

	// BatchSize is the maximum number of documents returned in each batch.
	BatchSize int

	// TTL is the number of seconds the cursor is kept on the server between fetches.
	TTL int

	BindVars    map[string]any
	Cache       *bool
	MemoryLimit int64

	FullCount       bool
	Profile         int
	Stream          bool
	MaxWarningCount int
}

// queryBody is the body sent to create a cursor.
type queryBody struct {
	Query       string         `json:"query"`
	Count       bool           `json:"count,omitempty"`
	BatchSize   int            `json:"batchSize,omitempty"`
	TTL         int            `json:"ttl,omitempty"`
	BindVars    map[string]any `json:"bindVars,omitempty"`
	Cache       *bool          `json:"cache,omitempty"`
	MemoryLimit int64          `json:"memoryLimit,omitempty"`
	Options     *queryOptions  `json:"options,omitempty"`
}

type queryOptions struct {
	FullCount       bool `json:"fullCount,omitempty"`
	Profile         int  `json:"profile,omitempty"`
	Stream          bool `json:"stream,omitempty"`
	MaxWarningCount int  `json:"maxWarningCount,omitempty"`
}

// VersionInfo describes the server version.
type VersionInfo struct {
	Server  string            `json:"server"`
	Version string            `json:"version"`
	License string            `json:"license"`
	Details map[string]string `json:"details,omitempty"`
}

// Database is the entry point for running queries against a database, requests are run through its executor.
type Database struct {
	executor Executor
}

// NewDatabase returns a database which runs requests through the given executor.
func NewDatabase(executor Executor) *Database {
	return &Database{executor: executor}
}

// Name returns the name of the database.
func (d *Database) Name() string {
	return d.executor.Connection().Database()
}

// Executor returns the executor requests are run through.
func (d *Database) Executor() Executor {
	return d.executor
}

// Query runs the given AQL query, returning a cursor over its results.
func (d *Database) Query(ctx context.Context, query string, options QueryOptions) (*Cursor, error) {
	body := queryBody{
		Query:       query,
		Count:       options.Count,
		BatchSize:   options.BatchSize,
		TTL:         options.TTL,
		BindVars:    options.BindVars,
		Cache:       options.Cache,
		MemoryLimit: options.MemoryLimit,
	}

	if options.FullCount || options.Profile != 0 || options.Stream || options.MaxWarningCount != 0 {
		body.Options = &queryOptions{
			FullCount:       options.FullCount,
			Profile:         options.Profile,
			Stream:          options.Stream,
			MaxWarningCount: options.MaxWarningCount,
		}
	}

	request, err := NewRequest(RequestOptions{Method: http.MethodPost, Endpoint: "/_api/cursor", Data: body})
	if err != nil {
		return nil, err
	}

	cursor, err := Execute(ctx, d.executor, request, func(resp *Response) (*Cursor, error) {
		return NewCursorFromResponse(d.executor, resp, CursorTypeQuery)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	return cursor, nil
}

// Version returns the version of the server, optionally including the details.
func (d *Database) Version(ctx context.Context, details bool) (VersionInfo, error) {
	request, err := NewRequest(RequestOptions{
		Method:   http.MethodGet,
		Endpoint: "/_api/version",
		Params:   map[string]any{"details": details},
	})
	if err != nil {
		return VersionInfo{}, err
	}

	version, err := Execute(ctx, d.executor, request, Decoded[VersionInfo]())
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to get version: %w", err)
	}

	return version, nil
}

// Ping checks that a coordinator can be reached with the configured credentials.
func (d *Database) Ping(ctx context.Context) (int, error) {
	return d.executor.Connection().Ping(ctx)
}

// BeginTransaction begins a stream transaction, the returned database runs requests within it.
func (d *Database) BeginTransaction(ctx context.Context, options TransactionOptions) (*Database,
	*TransactionExecutor, error,
) {
	executor, err := BeginTransaction(ctx, d.executor.Connection(), options)
	if err != nil {
		return nil, nil, err
	}

	return NewDatabase(executor), executor, nil
}

// Async returns an executor for asynchronous requests.
func (d *Database) Async(returnResult bool) *AsyncExecutor {
	return NewAsyncExecutor(d.executor.Connection(), returnResult)
}

// Batch returns an empty batch of requests.
func (d *Database) Batch() *BatchExecutor {
	return NewBatchExecutor(d.executor.Connection())
}
