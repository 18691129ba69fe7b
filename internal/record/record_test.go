package record

import (
	"errors"
	"testing"

	"github.com/studiobench/studiobench/internal/schema"
)

func cellFor(t *testing.T, row Row, col string) string {
	t.Helper()
	idx := schema.ColumnIndex(col)
	if idx < 0 {
		t.Fatalf("column %q not in registry", col)
	}
	return row[idx]
}

func TestNormalizeFlattensStructuredFields(t *testing.T) {
	row, mismatch, err := Normalize(map[string]any{
		"response_id":     "A1",
		"current_members": 12,
		"wheel_inventory": map[string]any{"BrentC": 2},
		"clay_types":      []any{"stoneware", "porcelain"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(row) != schema.Width() {
		t.Fatalf("row width = %d, want %d", len(row), schema.Width())
	}
	if got := cellFor(t, row, "response_id"); got != "A1" {
		t.Fatalf("response_id = %q, want A1", got)
	}
	if got := cellFor(t, row, "current_members"); got != "12" {
		t.Fatalf("current_members = %q, want 12", got)
	}
	if got := cellFor(t, row, "wheel_inventory"); got != `{"BrentC":2}` {
		t.Fatalf("wheel_inventory = %q", got)
	}
	if got := cellFor(t, row, "clay_types"); got != `["stoneware","porcelain"]` {
		t.Fatalf("clay_types = %q", got)
	}
	if len(mismatch.UnknownFields) != 0 {
		t.Fatalf("unexpected unknown fields: %v", mismatch.UnknownFields)
	}
}

func TestNormalizeDropsUnknownFieldsAndCountsThem(t *testing.T) {
	row, mismatch, err := Normalize(map[string]any{
		"response_id":  "A1",
		"not_a_column": "x",
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(mismatch.UnknownFields) != 1 || mismatch.UnknownFields[0] != "not_a_column" {
		t.Fatalf("unknown fields = %v, want [not_a_column]", mismatch.UnknownFields)
	}
	for _, cell := range row {
		if cell == "x" {
			t.Fatal("dropped field leaked into the row")
		}
	}
}

func TestNormalizeFailsLoudlyOnUnsupportedShape(t *testing.T) {
	type weird struct{ X int }
	_, _, err := Normalize(map[string]any{
		"response_id": "A1",
		"studio_name": weird{X: 1},
	})
	if !errors.Is(err, ErrUnsupportedShape) {
		t.Fatalf("err = %v, want ErrUnsupportedShape", err)
	}
}

func TestNormalizeMissingFieldsSerializeEmpty(t *testing.T) {
	row, mismatch, err := Normalize(map[string]any{"response_id": "A1"})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if got := cellFor(t, row, "studio_name"); got != "" {
		t.Fatalf("studio_name = %q, want empty", got)
	}
	if len(mismatch.MissingFields) == 0 {
		t.Fatal("expected missing fields to be reported")
	}
}

func TestStructuredRoundTrip(t *testing.T) {
	in := map[string]any{"hobbyist": 40.0, "regular": 60.0}
	row, _, err := Normalize(map[string]any{
		"response_id": "A1",
		"member_pcts": in,
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	resp := Decode(schema.Columns(), row, 2)
	got, ok := resp.Fields["member_pcts"].(map[string]any)
	if !ok {
		t.Fatalf("member_pcts decoded as %T, want map", resp.Fields["member_pcts"])
	}
	if got["hobbyist"] != 40.0 || got["regular"] != 60.0 {
		t.Fatalf("round-trip mismatch: %v", got)
	}
}

func TestDecodeKeepsMalformedStructuredCellAsString(t *testing.T) {
	header := []string{"response_id", "submitted_at", "kilns"}
	resp := Decode(header, []string{"A1", "2025-01-02T03:04:05Z", "not json"}, 2)
	if got, ok := resp.Fields["kilns"].(string); !ok || got != "not json" {
		t.Fatalf("kilns = %v (%T), want raw string", resp.Fields["kilns"], resp.Fields["kilns"])
	}
	if resp.ID != "A1" || resp.SheetRow != 2 {
		t.Fatalf("decoded id=%q row=%d", resp.ID, resp.SheetRow)
	}
}

func TestDecodePadsShortRows(t *testing.T) {
	header := []string{"response_id", "submitted_at", "studio_name"}
	resp := Decode(header, []string{"A1"}, 3)
	if resp.ID != "A1" {
		t.Fatalf("id = %q", resp.ID)
	}
	if _, present := resp.Fields["studio_name"]; present {
		t.Fatal("absent cell should not produce a field")
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-09-01T10:00:00Z", true},
		{"2025-09-01T10:00:00.123456", true}, // python isoformat, no tz
		{"2025-09-01 10:00:00", true},
		{"yesterday-ish", false},
		{"", false},
	}
	for _, c := range cases {
		if _, ok := ParseTimestamp(c.in); ok != c.ok {
			t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
	}
}

func TestValueCellFormats(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"studio", "studio"},
		{true, "true"},
		{12, "12"},
		{12.5, "12.5"},
		{nil, ""},
	}
	for _, c := range cases {
		v, err := FromAny(c.in)
		if err != nil {
			t.Fatalf("FromAny(%v): %v", c.in, err)
		}
		if got := v.Cell(); got != c.want {
			t.Fatalf("Cell(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
