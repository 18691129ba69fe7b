// Package dedup collapses duplicate survey rows by recency. The remote
// store enforces no uniqueness, so this is the layer that makes good on
// the one-canonical-row-per-response invariant.
package dedup

import (
	"github.com/studiobench/studiobench/internal/record"
	"github.com/studiobench/studiobench/internal/schema"
)

// Stats are the data-quality counters produced by a reconciliation
// pass. They are observability signals, not errors.
type Stats struct {
	Total      int `json:"total_rows"`
	MissingID  int `json:"missing_id"`
	Duplicates int `json:"duplicates"`
	Kept       int `json:"kept"`
}

// Result is the canonical view of the raw table.
type Result struct {
	Header []string
	Rows   [][]string
	// Positions holds, for each canonical row, its 1-based position in
	// the raw table (header is row 1), for targeting in-place updates.
	Positions []int
	Stats     Stats
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Reconcile collapses rows sharing a response_id down to the most
// recently submitted one. Rows with an empty response_id are dropped
// and counted. Unparseable submitted_at timestamps sort as oldest, so
// they never win over a valid one; exact timestamp ties go to the later
// physical row. Surviving rows keep their original relative order. The
// pass is deterministic: same input, same output.
func Reconcile(header []string, rows [][]string) Result {
	res := Result{Header: header, Stats: Stats{Total: len(rows)}}
	idCol := -1
	tsCol := -1
	for i, h := range header {
		switch h {
		case schema.ColResponseID:
			idCol = i
		case schema.ColSubmittedAt:
			tsCol = i
		}
	}
	if idCol < 0 {
		// No identifier column: nothing can be deduplicated, and no row
		// is addressable. Treat the whole table as dropped.
		res.Stats.MissingID = len(rows)
		return res
	}

	type candidate struct {
		rowIdx int
		ts     string
	}
	best := map[string]candidate{}
	withID := 0

	for i, row := range rows {
		id := cell(row, idCol)
		if id == "" {
			res.Stats.MissingID++
			continue
		}
		withID++
		ts := cell(row, tsCol)
		t, ok := record.ParseTimestamp(ts)
		cur, seen := best[id]
		if !seen {
			best[id] = candidate{rowIdx: i, ts: ts}
			continue
		}
		curT, curOK := record.ParseTimestamp(cur.ts)
		switch {
		case ok && !curOK:
			best[id] = candidate{rowIdx: i, ts: ts}
		case ok == curOK && !t.Before(curT):
			// Later physical occurrence wins ties. Covers the
			// both-unparseable case too, where both times are zero.
			best[id] = candidate{rowIdx: i, ts: ts}
		}
	}

	keep := make(map[int]bool, len(best))
	for _, c := range best {
		keep[c.rowIdx] = true
	}
	for i, row := range rows {
		if keep[i] {
			res.Rows = append(res.Rows, row)
			res.Positions = append(res.Positions, i+2)
		}
	}
	res.Stats.Kept = len(res.Rows)
	res.Stats.Duplicates = withID - res.Stats.Kept
	return res
}

// Find locates the canonical row for a response_id. It reconciles
// first, so when duplicates exist in the raw table the position it
// returns is the one the most recent submission lives at, never a
// stale copy. Returns (false, 0) when the identifier column is absent
// or no row matches.
func Find(header []string, rows [][]string, responseID string) (bool, int) {
	if responseID == "" {
		return false, 0
	}
	res := Reconcile(header, rows)
	idCol := -1
	for i, h := range header {
		if h == schema.ColResponseID {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return false, 0
	}
	for i, row := range res.Rows {
		if cell(row, idCol) == responseID {
			return true, res.Positions[i]
		}
	}
	return false, 0
}

// NormalizeWidths pads short rows and truncates long ones to the header
// width. Partial writes leave ragged rows behind; every read pass runs
// through here before any cell is interpreted.
func NormalizeWidths(header []string, rows [][]string) [][]string {
	width := len(header)
	out := make([][]string, len(rows))
	for i, row := range rows {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			out[i] = padded
		case len(row) > width:
			out[i] = row[:width]
		default:
			out[i] = row
		}
	}
	return out
}
