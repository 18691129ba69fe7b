// Package api exposes the survey persistence and dashboard read
// surface over HTTP. The multi-page form UI and the charting layer are
// external collaborators; these endpoints are the seam they plug into.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/studiobench/studiobench/internal/persist"
	"github.com/studiobench/studiobench/internal/record"
	"github.com/studiobench/studiobench/internal/results"
	"github.com/studiobench/studiobench/internal/schema"
	"github.com/studiobench/studiobench/internal/store"
)

type Router struct {
	saver  *persist.Saver
	loader *results.Loader
}

func NewRouter(saver *persist.Saver, loader *results.Loader) *Router {
	return &Router{saver: saver, loader: loader}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/responses", rt.handleSubmit)    // POST
	mux.HandleFunc("/api/responses/", rt.handleLoadByID) // GET /api/responses/{id}
	mux.HandleFunc("/api/results", rt.handleResults)     // GET
	mux.HandleFunc("/api/schema", rt.handleSchema)       // GET
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/responses — submit a new response or update an existing
// one. The body is the field map; nesting is allowed for structured
// fields. The stable response_id comes back so the user can update.
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := rt.saver.Save(r.Context(), fields)
	switch {
	case err == nil:
	case errors.Is(err, record.ErrUnsupportedShape):
		http.Error(w, "a field has an unsupported value shape", http.StatusBadRequest)
		return
	case errors.Is(err, persist.ErrPersistence):
		http.Error(w, "your response could not be saved, please try again", http.StatusServiceUnavailable)
		return
	default:
		http.Error(w, "your response could not be saved, please try again", http.StatusInternalServerError)
		return
	}

	body := map[string]any{
		"outcome":     outcome.Kind,
		"response_id": outcome.ResponseID,
	}
	switch outcome.Kind {
	case persist.SavedLocally:
		body["notice"] = "the shared sheet was unreachable; your response was saved locally"
	case persist.SkippedDuplicate:
		body["notice"] = "this response was already saved locally"
	}
	writeJSON(w, http.StatusOK, body)
}

// GET /api/responses/{id} — load a response for resume/update.
func (rt *Router) handleLoadByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/responses/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	resp, err := rt.saver.LoadByID(r.Context(), id)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		http.Error(w, "no response with that id", http.StatusNotFound)
		return
	case errors.Is(err, store.ErrConnectivity):
		http.Error(w, "the shared sheet is unreachable, try again later", http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, "failed to load response", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/results — the reconciled dataset plus derived KPIs and
// data-quality counters. ?refresh=1 bypasses the cache. A remote
// failure degrades to an empty dataset with a warning, never a 5xx.
func (rt *Router) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ds *results.Dataset
	if r.URL.Query().Get("refresh") == "1" {
		ds = rt.loader.Reload(r.Context())
	} else {
		ds = rt.loader.Load(r.Context())
	}

	records := ds.Records()
	type entry struct {
		*record.Response
		KPIs results.KPIs `json:"kpis"`
	}
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entry{Response: rec, KPIs: results.DeriveKPIs(rec)})
	}

	body := map[string]any{
		"count":   len(entries),
		"stats":   ds.Stats,
		"quality": results.Validate(records),
		"records": entries,
	}
	if ds.Warning != "" {
		body["warning"] = ds.Warning
	}
	writeJSON(w, http.StatusOK, body)
}

// GET /api/schema — the registry the form renders from.
func (rt *Router) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": schema.Version,
		"columns": schema.Columns(),
	})
}
