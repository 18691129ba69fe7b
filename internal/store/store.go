// Package store defines the row-oriented tabular store abstraction the
// persistence layer writes through, plus its non-remote backends.
package store

import (
	"context"
	"errors"
)

// ErrConnectivity wraps any failure to reach the backing store: network,
// auth, quota. Callers degrade to the local fallback (writes) or an
// empty dataset (reads); the store itself never retries.
var ErrConnectivity = errors.New("store unreachable")

// RowStore is a spreadsheet-shaped table: a header row followed by data
// rows addressed by 1-based position (the header is row 1). Operations
// are not atomic with one another; a lookup and a write are separate
// calls and may race. That weak model is accepted, see the dedup layer.
type RowStore interface {
	// ReadAll returns the header and all data rows. Both are empty when
	// the table has fewer than two rows.
	ReadAll(ctx context.Context) (header []string, rows [][]string, err error)

	// WriteRowAt overwrites the row at the given 1-based position with a
	// full replacement. No read-modify-write merge is performed.
	WriteRowAt(ctx context.Context, rowIndex int, values []string) error

	// AppendRow adds one row at the end of the table.
	AppendRow(ctx context.Context, values []string) error

	// EnsureHeader writes the header row if the table is empty. It is an
	// idempotent precondition re-checked on every insert; no cached
	// "header written" flag, so externally reset tables heal themselves.
	EnsureHeader(ctx context.Context, columns []string) error
}
