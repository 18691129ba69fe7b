package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process RowStore. It backs tests and local
// development runs where neither Sheets credentials nor a SQLite path
// are configured.
type MemoryStore struct {
	mu   sync.RWMutex
	grid [][]string

	// FailWith, when set, makes every operation return that error.
	// Tests use it to simulate connectivity loss.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ RowStore = (*MemoryStore)(nil)

func (m *MemoryStore) ReadAll(ctx context.Context) ([]string, [][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, nil, m.FailWith
	}
	if len(m.grid) < 2 {
		return nil, nil, nil
	}
	header := append([]string(nil), m.grid[0]...)
	rows := make([][]string, 0, len(m.grid)-1)
	for _, r := range m.grid[1:] {
		rows = append(rows, append([]string(nil), r...))
	}
	return header, rows, nil
}

func (m *MemoryStore) WriteRowAt(ctx context.Context, rowIndex int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for len(m.grid) < rowIndex {
		m.grid = append(m.grid, nil)
	}
	m.grid[rowIndex-1] = append([]string(nil), values...)
	return nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.grid = append(m.grid, append([]string(nil), values...))
	return nil
}

func (m *MemoryStore) EnsureHeader(ctx context.Context, columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if len(m.grid) == 0 {
		m.grid = append(m.grid, append([]string(nil), columns...))
	}
	return nil
}

// RowCount reports the number of data rows (header excluded).
func (m *MemoryStore) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.grid) == 0 {
		return 0
	}
	return len(m.grid) - 1
}
