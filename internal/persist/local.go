package persist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/studiobench/studiobench/internal/schema"
)

// ErrDuplicateLocal is the skip signal when the fallback file already
// holds a row for the incoming response_id. It is a logical outcome
// ("already saved"), not a hard failure: without this guard a flaky
// remote plus user retries would grow the spool without bound.
var ErrDuplicateLocal = errors.New("response already saved locally")

// LocalSpool is the append-only CSV file writes degrade to when the
// remote store is unreachable. Same header and column order as the
// registry. Process-local; cross-process locking is out of scope.
type LocalSpool struct {
	Path string
}

// existingIDs scans the spool for response_ids already present. A
// missing file means an empty spool.
func (l *LocalSpool) existingIDs() (map[string]bool, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open fallback file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fallback header: %w", err)
	}
	idCol := -1
	for i, h := range header {
		if h == schema.ColResponseID {
			idCol = i
			break
		}
	}
	ids := map[string]bool{}
	if idCol < 0 {
		return ids, nil
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fallback row: %w", err)
		}
		if idCol < len(row) && row[idCol] != "" {
			ids[row[idCol]] = true
		}
	}
	return ids, nil
}

// Append writes one row, creating the file with a header first when it
// does not exist yet. Returns ErrDuplicateLocal when the response_id is
// already spooled.
func (l *LocalSpool) Append(responseID string, row []string) error {
	ids, err := l.existingIDs()
	if err != nil {
		return err
	}
	if ids[responseID] {
		return ErrDuplicateLocal
	}

	newFile := false
	if _, err := os.Stat(l.Path); errors.Is(err, os.ErrNotExist) {
		newFile = true
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open fallback file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(schema.Columns()); err != nil {
			return fmt.Errorf("write fallback header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write fallback row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush fallback file: %w", err)
	}
	return nil
}
