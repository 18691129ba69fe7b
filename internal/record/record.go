// Package record normalizes nested survey submissions into flat rows
// that conform to the schema registry, and reconstructs them on read.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/studiobench/studiobench/internal/schema"
)

// Row is one persisted row, aligned index-for-index with
// schema.Columns(). Missing values are the empty string.
type Row []string

// Response is a fully reconstructed submission as returned to callers
// resuming an earlier response.
type Response struct {
	ID            string         `json:"response_id"`
	SchemaVersion string         `json:"schema_version"`
	SubmittedAt   string         `json:"submitted_at"`
	Fields        map[string]any `json:"fields"`
	// SheetRow is the store-assigned 1-based position observed at read
	// time. It is a targeting hint for in-place updates, not identity;
	// zero means the record has no known remote position.
	SheetRow int `json:"_sheet_row,omitempty"`
}

// SchemaMismatch counts the ways a submission and the registry disagree.
// It is a data-quality signal, never a write blocker.
type SchemaMismatch struct {
	// UnknownFields were present in the input but absent from the
	// registry; they are dropped from the persisted row.
	UnknownFields []string
	// MissingFields are registry columns the input did not provide;
	// they persist as empty strings.
	MissingFields []string
}

// None reports whether the submission matched the registry exactly.
func (m *SchemaMismatch) None() bool {
	return m == nil || (len(m.UnknownFields) == 0 && len(m.MissingFields) == 0)
}

// Normalize flattens a decoded submission into a registry-ordered row.
// Structured values become canonical JSON text, scalars pass through,
// unknown fields are dropped and reported via SchemaMismatch. A value
// of unsupported shape fails the whole normalization.
func Normalize(fields map[string]any) (Row, *SchemaMismatch, error) {
	row := make(Row, schema.Width())
	mismatch := &SchemaMismatch{}

	for name, raw := range fields {
		idx := schema.ColumnIndex(name)
		if idx < 0 {
			mismatch.UnknownFields = append(mismatch.UnknownFields, name)
			continue
		}
		v, err := FromAny(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", name, err)
		}
		row[idx] = v.Cell()
	}

	for i, col := range schema.Columns() {
		if row[i] != "" {
			continue
		}
		if _, ok := fields[col]; !ok {
			mismatch.MissingFields = append(mismatch.MissingFields, col)
		}
	}
	sort.Strings(mismatch.UnknownFields)
	sort.Strings(mismatch.MissingFields)
	return row, mismatch, nil
}

// Decode reconstructs a Response from a raw row read back from the
// store. Structured columns are parsed from their JSON encoding; cells
// that fail to parse are kept as raw strings and counted as defects by
// the caller (canonical encoding is JSON only).
func Decode(header []string, row []string, sheetRow int) *Response {
	resp := &Response{Fields: map[string]any{}, SheetRow: sheetRow}
	for i, col := range header {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		switch col {
		case schema.ColResponseID:
			resp.ID = cell
		case schema.ColSchemaVersion:
			resp.SchemaVersion = cell
		case schema.ColSubmittedAt:
			resp.SubmittedAt = cell
		default:
			if cell == "" {
				continue
			}
			if schema.IsStructured(col) {
				var parsed any
				if err := json.Unmarshal([]byte(cell), &parsed); err == nil {
					resp.Fields[col] = parsed
					continue
				}
			}
			resp.Fields[col] = cell
		}
	}
	return resp
}

// Timestamp layouts accepted on read. Rows were historically written by
// clients that omit the timezone, so the bare ISO forms stay accepted.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a submitted_at cell. ok is false for anything
// unparseable; such rows sort as oldest during reconciliation.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders the canonical submitted_at encoding.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
