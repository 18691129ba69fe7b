// Package results produces the ready-to-display canonical dataset for
// the benchmarking dashboard: raw rows read, widths normalized, a
// defensive second deduplication pass, and a bounded-staleness cache in
// front of the remote store.
package results

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/studiobench/studiobench/internal/dedup"
	"github.com/studiobench/studiobench/internal/record"
	"github.com/studiobench/studiobench/internal/store"
)

// DefaultTTL bounds read volume against the rate-limited remote store.
const DefaultTTL = 15 * time.Minute

// Dataset is the reconciled view handed to the presentation layer.
type Dataset struct {
	Header []string
	Rows   [][]string
	// Positions are 1-based raw-table positions per canonical row.
	Positions []int
	Stats     dedup.Stats
	// Warning carries a short operator-facing note when the load
	// degraded (remote unreachable -> empty dataset, not a crash).
	Warning string
}

// Records decodes the canonical rows into field maps with structured
// columns parsed from JSON.
func (d *Dataset) Records() []*record.Response {
	out := make([]*record.Response, 0, len(d.Rows))
	for i, row := range d.Rows {
		pos := 0
		if i < len(d.Positions) {
			pos = d.Positions[i]
		}
		out = append(out, record.Decode(d.Header, row, pos))
	}
	return out
}

// Loader caches the canonical dataset for a staleness budget.
type Loader struct {
	remote store.RowStore
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    *Dataset
	fetchedAt time.Time
}

func NewLoader(remote store.RowStore, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{
		remote: remote,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the canonical dataset, served from cache within the
// staleness budget. A remote failure degrades to an empty dataset with
// a warning; the dashboard shows "no data" instead of crashing.
func (l *Loader) Load(ctx context.Context) *Dataset {
	l.mu.Lock()
	if l.cached != nil && l.now().Sub(l.fetchedAt) < l.ttl {
		ds := l.cached
		l.mu.Unlock()
		return ds
	}
	l.mu.Unlock()
	return l.Reload(ctx)
}

// Reload bypasses the cache and fetches fresh data.
func (l *Loader) Reload(ctx context.Context) *Dataset {
	ds := l.fetch(ctx)
	l.mu.Lock()
	l.cached = ds
	l.fetchedAt = l.now()
	l.mu.Unlock()
	return ds
}

func (l *Loader) fetch(ctx context.Context) *Dataset {
	header, rows, err := l.remote.ReadAll(ctx)
	if err != nil {
		msg := "survey data is temporarily unavailable"
		if !errors.Is(err, store.ErrConnectivity) {
			msg = "survey data could not be read"
		}
		log.Printf("results: load failed: %v", err)
		return &Dataset{Warning: msg}
	}
	if len(header) == 0 {
		return &Dataset{}
	}
	rows = dedup.NormalizeWidths(header, rows)
	res := dedup.Reconcile(header, rows)
	if res.Stats.MissingID > 0 {
		log.Printf("results: dropped %d rows with missing response_id", res.Stats.MissingID)
	}
	if res.Stats.Duplicates > 0 {
		log.Printf("results: collapsed %d duplicate submissions (kept most recent)", res.Stats.Duplicates)
	}
	return &Dataset{Header: header, Rows: res.Rows, Positions: res.Positions, Stats: res.Stats}
}
