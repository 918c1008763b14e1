// Package errref is a static reference of the error numbers ('errorNum') returned by ArangoDB.
package errref

import (
	_ "embed"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// Known error numbers, referenced by the client itself.
const (
	CodeNoError             = 0
	CodeHTTPUnauthorized    = 401
	CodeHTTPForbidden       = 403
	CodeHTTPNotFound        = 404
	CodeHTTPUnavailable     = 503
	CodeDocumentNotFound    = 1202
	CodeCursorNotFound      = 1600
	CodeTransactionAborted  = 1654
	CodeTransactionNotFound = 1655
)

//go:embed errors.json
var embedded []byte

// Names of the entries which aren't part of any table.
const (
	NameEmpty   = "ERROR_EMPTY"
	NameUnknown = "ERROR_UNKNOWN"
)

// Entry describes a single error number.
type Entry struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Empty is the entry of a response which didn't carry an error number.
var Empty = Entry{Name: NameEmpty, Message: "no error number"}

// Unknown returns the entry for an error number which isn't in the table.
func Unknown(code int) Entry {
	return Entry{Code: code, Name: NameUnknown, Message: fmt.Sprintf("unknown error %d", code)}
}

// Known returns a boolean indicating whether the entry was found in a table.
func (e Entry) Known() bool {
	return e.Name != "" && e.Name != NameEmpty && e.Name != NameUnknown
}

// IsEmpty returns a boolean indicating whether this is the entry of a response without an error number.
func (e Entry) IsEmpty() bool {
	return e == Empty
}

func (e Entry) String() string {
	switch {
	case e.IsEmpty():
		return e.Message
	case !e.Known():
		return fmt.Sprintf("unknown error %d", e.Code)
	}

	return fmt.Sprintf("%s (%d)", e.Name, e.Code)
}

// Table is an immutable lookup from error number to entry; safe for concurrent use.
type Table struct {
	entries map[int]Entry
}

// NewTable returns a table containing the given entries, later entries replace earlier entries with the same code.
func NewTable(entries ...Entry) *Table {
	table := &Table{entries: make(map[int]Entry, len(entries))}

	for _, entry := range entries {
		table.entries[entry.Code] = entry
	}

	return table
}

// Load decodes a JSON array of entries from the given reader.
func Load(reader io.Reader) (*Table, error) {
	var entries []Entry

	err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(reader).Decode(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to decode error table: %w", err)
	}

	return NewTable(entries...), nil
}

// Default returns the table of error numbers built into this package, it's only decoded once.
var Default = sync.OnceValue(func() *Table {
	var entries []Entry

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(embedded, &entries)
	if err != nil {
		panic(fmt.Sprintf("embedded error table is invalid: %s", err))
	}

	return NewTable(entries...)
})

// Lookup returns the entry for the given code, the boolean is false if the code is unknown in which case the entry is
// 'Unknown(code)'.
func (t *Table) Lookup(code int) (Entry, bool) {
	entry, ok := t.entries[code]
	if !ok {
		return Unknown(code), false
	}

	return entry, true
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
