package arango

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/arangotools/arangorest/deque"
)

// Cursor iterates over the results of a query, fetching batches from the server as they're needed.
//
// NOTE: A cursor is not safe for concurrent use.
type Cursor struct {
	executor   Executor
	serializer Serializer
	cursorType CursorType

	id      string
	hasMore bool
	count   *int
	cached  bool
	buffer  *deque.Deque[jsoniter.RawMessage]

	statistics *QueryStatistics
	profile    map[string]float64
	warnings   []QueryWarning
}

// NewCursor returns a cursor seeded with the first batch; further batches are fetched through the given executor.
func NewCursor(executor Executor, seed CursorData, cursorType CursorType) (*Cursor, error) {
	if cursorType != CursorTypeQuery && cursorType != CursorTypeExport {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidCursorType, cursorType)
	}

	var serializer Serializer = NewJSONSerializer()
	if conn := executor.Connection(); conn != nil {
		serializer = conn.Serializer()
	}

	cursor := &Cursor{
		executor:   executor,
		serializer: serializer,
		cursorType: cursorType,
		buffer:     deque.NewDequeWithCapacity[jsoniter.RawMessage](len(seed.Result)),
	}

	cursor.update(seed)

	return cursor, nil
}

// NewCursorFromResponse returns a cursor seeded from the response to a cursor creation request.
func NewCursorFromResponse(executor Executor, resp *Response, cursorType CursorType) (*Cursor, error) {
	if !resp.IsSuccess {
		return nil, NewServerError(resp)
	}

	var seed CursorData

	if err := resp.Decode(&seed); err != nil {
		return nil, err
	}

	return NewCursor(executor, seed, cursorType)
}

// update applies the given batch to the cursor state.
func (c *Cursor) update(data CursorData) {
	if data.ID != "" {
		c.id = data.ID
	}

	if data.Count != nil {
		c.count = data.Count
	}

	c.cached = data.Cached
	c.hasMore = data.HasMore
	c.buffer.PushBackAll(data.Result...)

	if data.Extra == nil {
		return
	}

	if c.statistics == nil {
		c.statistics = data.Extra.Stats
	}

	if c.profile == nil {
		c.profile = data.Extra.Profile
	}

	if c.warnings == nil {
		c.warnings = data.Extra.Warnings
	}
}

// endpoint returns the endpoint for this cursor on the server.
func (c *Cursor) endpoint() string {
	return fmt.Sprintf("/_api/%s/%s", c.cursorType, c.id)
}

// ID returns the server side identifier, empty if the entire result fit in the first batch.
func (c *Cursor) ID() string {
	return c.id
}

// Type returns the cursor type.
func (c *Cursor) Type() CursorType {
	return c.cursorType
}

// HasMore returns a boolean indicating whether there are more batches to fetch from the server.
func (c *Cursor) HasMore() bool {
	return c.hasMore
}

// Empty returns a boolean indicating whether the current batch is empty.
func (c *Cursor) Empty() bool {
	return c.buffer.Empty()
}

// Cached returns a boolean indicating whether the result was served from the query cache.
func (c *Cursor) Cached() bool {
	return c.cached
}

// Batch returns a copy of the documents in the current batch.
func (c *Cursor) Batch() []jsoniter.RawMessage {
	return c.buffer.Slice()
}

// Statistics returns the query statistics, <nil> if the server hasn't sent them (yet).
func (c *Cursor) Statistics() *QueryStatistics {
	return c.statistics
}

// Profile returns the query profile, <nil> if profiling wasn't enabled.
func (c *Cursor) Profile() map[string]float64 {
	return maps.Clone(c.profile)
}

// Warnings returns the warnings raised by the query.
func (c *Cursor) Warnings() []QueryWarning {
	return slices.Clone(c.warnings)
}

// Count returns the total number of documents in the result, the boolean is false if the query wasn't run with
// 'count' enabled.
func (c *Cursor) Count() (int, bool) {
	if c.count == nil {
		return 0, false
	}

	return *c.count, true
}

// Len is like 'Count' but returns 'ErrCursorCountNotEnabled' if the count isn't being tracked.
func (c *Cursor) Len() (int, error) {
	count, ok := c.Count()
	if !ok {
		return 0, ErrCursorCountNotEnabled
	}

	return count, nil
}

// Pop removes and returns the next document in the current batch without fetching from the server.
func (c *Cursor) Pop() (jsoniter.RawMessage, error) {
	document, ok := c.buffer.PopFront()
	if !ok {
		return nil, ErrCursorEmpty
	}

	return document, nil
}

// NextRaw returns the next document, fetching the next batch when the current one is exhausted.
//
// NOTE: 'ErrNoMoreDocuments' is returned once every document has been returned, without contacting the server.
func (c *Cursor) NextRaw(ctx context.Context) (jsoniter.RawMessage, error) {
	for c.buffer.Empty() {
		if !c.hasMore {
			return nil, ErrNoMoreDocuments
		}

		if _, err := c.Fetch(ctx); err != nil {
			return nil, err
		}
	}

	return c.Pop()
}

// Next decodes the next document into the given value, see 'NextRaw'.
func (c *Cursor) Next(ctx context.Context, v any) error {
	document, err := c.NextRaw(ctx)
	if err != nil {
		return err
	}

	if err := c.serializer.Unmarshal(document, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	return nil
}

// Documents returns an iterator over the remaining documents; iteration stops after yielding the first error.
func (c *Cursor) Documents(ctx context.Context) iter.Seq2[jsoniter.RawMessage, error] {
	return func(yield func(jsoniter.RawMessage, error) bool) {
		for {
			document, err := c.NextRaw(ctx)
			if errors.Is(err, ErrNoMoreDocuments) {
				return
			}

			if !yield(document, err) || err != nil {
				return
			}
		}
	}
}

// Fetch the next batch from the server, appending it to the current batch.
//
// NOTE: The cursor is left unchanged if the fetch fails, fetching from a cursor with no more batches is an error.
func (c *Cursor) Fetch(ctx context.Context) (*FetchResult, error) {
	if c.id == "" {
		return nil, &CursorStateError{reason: "cursor ID not set"}
	}

	if !c.hasMore {
		return nil, &CursorStateError{reason: fmt.Sprintf("cursor '%s' has no more batches", c.id)}
	}

	request, err := NewRequest(RequestOptions{Method: http.MethodPut, Endpoint: c.endpoint()})
	if err != nil {
		return nil, err
	}

	data, err := Execute(ctx, c.executor, request, func(resp *Response) (CursorData, error) {
		var data CursorData

		if !resp.IsSuccess {
			return data, NewServerError(resp)
		}

		if err := resp.Decode(&data); err != nil {
			return data, err
		}

		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next batch of cursor '%s': %w", c.id, err)
	}

	c.update(data)

	return &FetchResult{
		ID:         c.id,
		Count:      c.count,
		Cached:     c.cached,
		HasMore:    c.hasMore,
		Batch:      data.Result,
		Statistics: c.statistics,
		Profile:    c.profile,
		Warnings:   c.warnings,
	}, nil
}

// Close releases the cursor on the server, when ignoring missing cursors a cursor the server no longer knows about
// results in 'CloseMissing' rather than an error.
func (c *Cursor) Close(ctx context.Context, ignoreMissing bool) (CloseResult, error) {
	if c.id == "" {
		return CloseNoop, nil
	}

	request, err := NewRequest(RequestOptions{Method: http.MethodDelete, Endpoint: c.endpoint()})
	if err != nil {
		return CloseNoop, err
	}

	result, err := Execute(ctx, c.executor, request, func(resp *Response) (CloseResult, error) {
		if resp.IsSuccess {
			return CloseReleased, nil
		}

		if resp.StatusCode == http.StatusNotFound && ignoreMissing {
			return CloseMissing, nil
		}

		return CloseNoop, NewServerError(resp)
	})
	if err != nil {
		return CloseNoop, fmt.Errorf("failed to close cursor '%s': %w", c.id, err)
	}

	return result, nil
}

// Release closes the cursor ignoring cursors which the server no longer knows about, for use with 'defer'.
func (c *Cursor) Release(ctx context.Context) error {
	_, err := c.Close(ctx, true)
	return err
}
