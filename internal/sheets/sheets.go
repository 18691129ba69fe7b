// Package sheets adapts the shared Google Sheet into the row-oriented
// store interface used by the persistence layer. All failures reaching
// the Sheets API surface as store.ErrConnectivity; nothing is retried
// here (the orchestrator owns the retry budget).
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/studiobench/studiobench/internal/store"
)

// Store talks to one sheet (tab) of one spreadsheet.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

// New builds a Store authenticated with a service-account credentials
// JSON blob.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheetName string) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

var _ store.RowStore = (*Store)(nil)

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprint(c)
	}
	return out
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (s *Store) ReadAll(ctx context.Context) ([]string, [][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", store.ErrConnectivity, s.sheetName, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil, nil
	}
	header := cellsToStrings(resp.Values[0])
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		rows = append(rows, cellsToStrings(raw))
	}
	return header, rows, nil
}

func (s *Store) WriteRowAt(ctx context.Context, rowIndex int, values []string) error {
	if rowIndex < 1 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{stringsToCells(values)}}
	target := fmt.Sprintf("%s!A%d", s.sheetName, rowIndex)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", store.ErrConnectivity, target, err)
	}
	return nil
}

func (s *Store) AppendRow(ctx context.Context, values []string) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{stringsToCells(values)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A1", vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append to %s: %v", store.ErrConnectivity, s.sheetName, err)
	}
	return nil
}

// EnsureHeader probes A1 and writes the header row when the sheet is
// empty. Re-checked before every insert so that a manually cleared
// sheet grows its header back on the next write.
func (s *Store) EnsureHeader(ctx context.Context, columns []string) error {
	probe := s.sheetName + "!A1:A1"
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, probe).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: probe header: %v", store.ErrConnectivity, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{stringsToCells(columns)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write header: %v", store.ErrConnectivity, err)
	}
	return nil
}
