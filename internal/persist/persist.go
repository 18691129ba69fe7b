// Package persist owns the submit/update state machine: decide insert
// versus update against the remote store, and degrade to the local
// spool when the remote is unreachable. Every successful save leaves
// exactly one durable copy of the record, remotely or locally.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/studiobench/studiobench/internal/dedup"
	"github.com/studiobench/studiobench/internal/record"
	"github.com/studiobench/studiobench/internal/schema"
	"github.com/studiobench/studiobench/internal/store"
)

var (
	// ErrNotFound is the logical miss for an identifier lookup. It is
	// distinct from connectivity failure: "no such response" versus
	// "could not ask".
	ErrNotFound = errors.New("response not found")
	// ErrPersistence means both the remote write and the local fallback
	// failed. The one outcome the user has to retry.
	ErrPersistence = errors.New("response could not be saved")
)

// OutcomeKind classifies where a save landed.
type OutcomeKind string

const (
	// Updated: an existing remote row was overwritten in place.
	Updated OutcomeKind = "updated"
	// Inserted: a new remote row was appended.
	Inserted OutcomeKind = "inserted"
	// SavedLocally: the remote was unreachable, the row went to the
	// fallback spool.
	SavedLocally OutcomeKind = "saved_locally"
	// SkippedDuplicate: the fallback spool already held this
	// response_id; nothing was written.
	SkippedDuplicate OutcomeKind = "duplicate_skipped"
)

// Outcome reports a completed save.
type Outcome struct {
	Kind       OutcomeKind `json:"outcome"`
	ResponseID string      `json:"response_id"`
	// Row is the 1-based remote position for Updated outcomes.
	Row int `json:"row,omitempty"`
}

// Saver drives a single submit-or-update action. One action, one
// caller, blocking until done; no background work.
type Saver struct {
	remote store.RowStore
	local  *LocalSpool

	// attempts bounds how often a failed remote call is retried before
	// degrading to the spool. backoff separates attempts.
	attempts int
	backoff  time.Duration

	now   func() time.Time
	newID func() string
	sleep func(time.Duration)
}

// NewSaver wires the orchestrator. fallbackPath locates the local CSV
// spool used when the remote store is down.
func NewSaver(remote store.RowStore, fallbackPath string) *Saver {
	return &Saver{
		remote:   remote,
		local:    &LocalSpool{Path: fallbackPath},
		attempts: 2,
		backoff:  500 * time.Millisecond,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		sleep:    time.Sleep,
	}
}

// retryRemote runs op up to the attempt budget, backing off between
// tries. Only connectivity failures are retried; anything else is a
// programming error and propagates immediately.
func (s *Saver) retryRemote(ctx context.Context, op func() error) error {
	var err error
	for i := 0; i < s.attempts; i++ {
		if i > 0 {
			s.sleep(s.backoff)
		}
		err = op()
		if err == nil || !errors.Is(err, store.ErrConnectivity) {
			return err
		}
	}
	return err
}

// Save persists a submission. The incoming fields may be nested; they
// are normalized here after the metadata stamp. A response_id is minted
// when the caller did not supply one, and returned in the outcome so
// the user can update later.
func (s *Saver) Save(ctx context.Context, fields map[string]any) (*Outcome, error) {
	id, _ := fields[schema.ColResponseID].(string)
	if id == "" {
		id = s.newID()
	}

	stamped := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped[schema.ColResponseID] = id
	stamped[schema.ColSchemaVersion] = schema.Version
	stamped[schema.ColSubmittedAt] = record.FormatTimestamp(s.now())

	row, mismatch, err := record.Normalize(stamped)
	if err != nil {
		return nil, err
	}
	if len(mismatch.UnknownFields) > 0 {
		log.Printf("persist: dropping %d fields not in schema %s: %v",
			len(mismatch.UnknownFields), schema.Version, mismatch.UnknownFields)
	}

	outcome, err := s.saveRemote(ctx, id, row)
	if err == nil {
		return outcome, nil
	}
	if !errors.Is(err, store.ErrConnectivity) {
		return nil, err
	}
	log.Printf("persist: remote store unavailable, spooling %s locally: %v", id, err)
	return s.saveLocal(id, row)
}

func (s *Saver) saveRemote(ctx context.Context, id string, row record.Row) (*Outcome, error) {
	var header []string
	var rows [][]string
	err := s.retryRemote(ctx, func() error {
		var e error
		header, rows, e = s.remote.ReadAll(ctx)
		return e
	})
	if err != nil {
		return nil, err
	}

	// Target the reconciled canonical row, never the first duplicate a
	// raw scan happens to hit.
	if found, pos := dedup.Find(header, dedup.NormalizeWidths(header, rows), id); found {
		err := s.retryRemote(ctx, func() error {
			return s.remote.WriteRowAt(ctx, pos, row)
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: Updated, ResponseID: id, Row: pos}, nil
	}

	err = s.retryRemote(ctx, func() error {
		if e := s.remote.EnsureHeader(ctx, schema.Columns()); e != nil {
			return e
		}
		return s.remote.AppendRow(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: Inserted, ResponseID: id}, nil
}

func (s *Saver) saveLocal(id string, row record.Row) (*Outcome, error) {
	err := s.local.Append(id, row)
	if errors.Is(err, ErrDuplicateLocal) {
		return &Outcome{Kind: SkippedDuplicate, ResponseID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &Outcome{Kind: SavedLocally, ResponseID: id}, nil
}

// LoadByID fetches the full reconstructed response for an identifier,
// structured fields decoded, annotated with its current sheet row.
// Used by the resume-and-update flow.
func (s *Saver) LoadByID(ctx context.Context, id string) (*record.Response, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var header []string
	var rows [][]string
	err := s.retryRemote(ctx, func() error {
		var e error
		header, rows, e = s.remote.ReadAll(ctx)
		return e
	})
	if err != nil {
		return nil, err
	}
	rows = dedup.NormalizeWidths(header, rows)
	res := dedup.Reconcile(header, rows)
	idCol := -1
	for i, h := range header {
		if h == schema.ColResponseID {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, ErrNotFound
	}
	for i, row := range res.Rows {
		if idCol < len(row) && row[idCol] == id {
			return record.Decode(header, row, res.Positions[i]), nil
		}
	}
	return nil, ErrNotFound
}
