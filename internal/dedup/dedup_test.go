package dedup

import (
	"reflect"
	"testing"
)

var header = []string{"response_id", "schema_version", "submitted_at", "current_members"}

func row(id, ts, members string) []string {
	return []string{id, "v1.1", ts, members}
}

func TestReconcileKeepsMostRecentPerID(t *testing.T) {
	rows := [][]string{
		row("A1", "2025-01-01T10:00:00Z", "12"),
		row("B2", "2025-01-02T10:00:00Z", "30"),
		row("A1", "2025-01-03T10:00:00Z", "15"),
	}
	res := Reconcile(header, rows)
	if res.Stats.Kept != 2 || res.Stats.Duplicates != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("kept %d rows, want 2", len(res.Rows))
	}
	// B2 appeared before the winning A1 row; original relative order holds.
	if res.Rows[0][0] != "B2" || res.Rows[1][0] != "A1" {
		t.Fatalf("order = %v, %v", res.Rows[0][0], res.Rows[1][0])
	}
	if res.Rows[1][3] != "15" {
		t.Fatalf("canonical A1 members = %q, want 15", res.Rows[1][3])
	}
	// Positions refer to raw 1-based sheet rows (header = 1).
	if res.Positions[0] != 3 || res.Positions[1] != 4 {
		t.Fatalf("positions = %v", res.Positions)
	}
}

func TestReconcileDropsMissingIDs(t *testing.T) {
	rows := [][]string{
		row("", "2025-01-01T10:00:00Z", "1"),
		row("A1", "2025-01-01T10:00:00Z", "2"),
	}
	res := Reconcile(header, rows)
	if res.Stats.MissingID != 1 || res.Stats.Kept != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestReconcileUnparseableTimestampNeverWins(t *testing.T) {
	rows := [][]string{
		row("A1", "2025-01-01T10:00:00Z", "old-but-valid"),
		row("A1", "garbage", "newer-in-row-order"),
	}
	res := Reconcile(header, rows)
	if len(res.Rows) != 1 {
		t.Fatalf("kept %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0][3] != "old-but-valid" {
		t.Fatalf("winner = %q, want the row with a parseable timestamp", res.Rows[0][3])
	}
}

func TestReconcileTimestampTieLastOccurrenceWins(t *testing.T) {
	rows := [][]string{
		row("A1", "2025-01-01T10:00:00Z", "first"),
		row("A1", "2025-01-01T10:00:00Z", "second"),
	}
	res := Reconcile(header, rows)
	if res.Rows[0][3] != "second" {
		t.Fatalf("winner = %q, want second", res.Rows[0][3])
	}
}

func TestReconcileDeterministic(t *testing.T) {
	rows := [][]string{
		row("A1", "2025-01-01T10:00:00Z", "1"),
		row("B2", "bad", "2"),
		row("A1", "2025-01-05T10:00:00Z", "3"),
		row("B2", "2025-01-02T10:00:00Z", "4"),
		row("", "2025-01-02T10:00:00Z", "5"),
	}
	first := Reconcile(header, rows)
	second := Reconcile(header, rows)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("reconcile is not deterministic")
	}
}

func TestReconcileMissingIDColumn(t *testing.T) {
	res := Reconcile([]string{"a", "b"}, [][]string{{"1", "2"}})
	if res.Stats.Kept != 0 || res.Stats.MissingID != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestFindReturnsCanonicalPosition(t *testing.T) {
	rows := [][]string{
		row("A1", "2025-01-01T10:00:00Z", "stale"),
		row("A1", "2025-01-03T10:00:00Z", "canonical"),
	}
	found, pos := Find(header, rows, "A1")
	if !found || pos != 3 {
		t.Fatalf("found=%v pos=%d, want canonical row 3", found, pos)
	}
	if found, _ := Find(header, rows, "ZZ"); found {
		t.Fatal("unexpected match for unknown id")
	}
	if found, _ := Find(header, rows, ""); found {
		t.Fatal("empty id must not match")
	}
}

func TestNormalizeWidths(t *testing.T) {
	rows := NormalizeWidths(header, [][]string{
		{"A1"},
		{"B2", "v1.1", "ts", "3", "extra"},
		{"C3", "v1.1", "ts", "4"},
	})
	for i, r := range rows {
		if len(r) != len(header) {
			t.Fatalf("row %d width = %d, want %d", i, len(r), len(header))
		}
	}
	if rows[0][1] != "" {
		t.Fatalf("padded cell = %q, want empty", rows[0][1])
	}
	if rows[1][3] != "3" {
		t.Fatalf("truncated row lost data: %v", rows[1])
	}
}
