package arango

import (
	jsoniter "github.com/json-iterator/go"
)

// CursorType is the kind of server side cursor, both types share the same protocol under different endpoints.
type CursorType string

const (
	CursorTypeQuery  CursorType = "cursor"
	CursorTypeExport CursorType = "export"
)

// CursorData is the body returned when creating a cursor, or fetching its next batch.
type CursorData struct {
	ID      string                `json:"id,omitempty"`
	HasMore bool                  `json:"hasMore"`
	Result  []jsoniter.RawMessage `json:"result"`
	Count   *int                  `json:"count,omitempty"`
	Cached  bool                  `json:"cached"`
	Extra   *CursorExtra          `json:"extra,omitempty"`
}

// CursorExtra carries the query statistics, profile and warnings; for streaming queries it's only sent with the final
// batch.
type CursorExtra struct {
	Stats    *QueryStatistics   `json:"stats,omitempty"`
	Profile  map[string]float64 `json:"profile,omitempty"`
	Warnings []QueryWarning     `json:"warnings,omitempty"`
}

// QueryStatistics are the execution statistics of a query.
type QueryStatistics struct {
	WritesExecuted      int64   `json:"writesExecuted"`
	WritesIgnored       int64   `json:"writesIgnored"`
	ScannedFull         int64   `json:"scannedFull"`
	ScannedIndex        int64   `json:"scannedIndex"`
	CursorsCreated      int64   `json:"cursorsCreated"`
	CursorsRearmed      int64   `json:"cursorsRearmed"`
	CacheHits           int64   `json:"cacheHits"`
	CacheMisses         int64   `json:"cacheMisses"`
	Filtered            int64   `json:"filtered"`
	HTTPRequests        int64   `json:"httpRequests"`
	FullCount           *int64  `json:"fullCount,omitempty"`
	ExecutionTime       float64 `json:"executionTime"`
	PeakMemoryUsage     int64   `json:"peakMemoryUsage"`
	DocumentLookups     int64   `json:"documentLookups"`
	IntermediateCommits int64   `json:"intermediateCommits"`
}

// QueryWarning is a warning raised whilst executing a query.
type QueryWarning struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FetchResult describes the outcome of fetching the next batch of a cursor.
type FetchResult struct {
	ID      string
	Count   *int
	Cached  bool
	HasMore bool

	// Batch contains the documents received by this fetch, in order.
	Batch []jsoniter.RawMessage

	Statistics *QueryStatistics
	Profile    map[string]float64
	Warnings   []QueryWarning
}

// CloseResult is the outcome of closing a cursor.
type CloseResult int

const (
	// CloseNoop means the cursor had no server side identifier, so nothing was sent.
	CloseNoop CloseResult = iota

	// CloseReleased means the server released the cursor.
	CloseReleased

	// CloseMissing means the server no longer knew about the cursor, it's only returned when ignoring missing cursors.
	CloseMissing
)

func (c CloseResult) String() string {
	switch c {
	case CloseNoop:
		return "noop"
	case CloseReleased:
		return "released"
	case CloseMissing:
		return "missing"
	}

	return "unknown"
}
