package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLiteStore implements RowStore on a local SQLite file for
// self-hosted deployments that run without Google credentials. The
// table keeps the same shape as the remote sheet: an ordered list of
// rows whose first entry is the header.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
	seq   INTEGER PRIMARY KEY AUTOINCREMENT,
	cells TEXT NOT NULL
);`

// NewSQLiteStore prepares the database for use. The caller owns db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create sheet_rows table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var _ RowStore = (*SQLiteStore)(nil)

func encodeCells(values []string) (string, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode row: %w", err)
	}
	return string(b), nil
}

func decodeCells(data string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer rows.Close()

	var all [][]string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
		cells, err := decodeCells(data)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if len(all) < 2 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func (s *SQLiteStore) WriteRowAt(ctx context.Context, rowIndex int, values []string) error {
	if rowIndex < 1 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	data, err := encodeCells(values)
	if err != nil {
		return err
	}
	var seq int64
	err = s.db.QueryRowContext(ctx,
		`SELECT seq FROM sheet_rows ORDER BY seq LIMIT 1 OFFSET ?`, rowIndex-1).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sheet_rows SET cells = ? WHERE seq = ?`, data, seq); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return nil
}

func (s *SQLiteStore) AppendRow(ctx context.Context, values []string) error {
	data, err := encodeCells(values)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (cells) VALUES (?)`, data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return nil
}

func (s *SQLiteStore) EnsureHeader(ctx context.Context, columns []string) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sheet_rows`).Scan(&count); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if count > 0 {
		return nil
	}
	data, err := encodeCells(columns)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (cells) VALUES (?)`, data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return nil
}
