package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiobench/studiobench/internal/api"
	"github.com/studiobench/studiobench/internal/middleware"
	"github.com/studiobench/studiobench/internal/persist"
	"github.com/studiobench/studiobench/internal/results"
	"github.com/studiobench/studiobench/internal/schema"
	"github.com/studiobench/studiobench/internal/sheets"
	"github.com/studiobench/studiobench/internal/store"
	"github.com/studiobench/studiobench/internal/utils"
)

// buildStore selects the backing row store. "sheets" is the shared
// spreadsheet everyone benchmarks against; "sqlite" serves self-hosted
// deployments without Google credentials; "memory" is for local dev.
func buildStore(ctx context.Context) (store.RowStore, error) {
	switch backend := utils.SafeEnv("STUDIOBENCH_STORE", "sheets"); backend {
	case "sheets":
		credPath := utils.SafeEnv("STUDIOBENCH_CREDENTIALS_FILE", "credentials.json")
		creds, err := os.ReadFile(credPath)
		if err != nil {
			return nil, fmt.Errorf("read credentials %s: %w", credPath, err)
		}
		sheetID := os.Getenv("STUDIOBENCH_SHEET_ID")
		if sheetID == "" {
			return nil, fmt.Errorf("STUDIOBENCH_SHEET_ID is required for the sheets backend")
		}
		return sheets.New(ctx, creds, sheetID, utils.SafeEnv("STUDIOBENCH_SHEET_NAME", "Sheet1"))
	case "sqlite":
		path := utils.SafeEnv("STUDIOBENCH_SQLITE_PATH", "studiobench.db")
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		return store.NewSQLiteStore(db)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STUDIOBENCH_STORE %q", backend)
	}
}

func main() {
	addr := utils.SafeEnv("STUDIOBENCH_ADDR", ":8080")
	commit := os.Getenv("STUDIOBENCH_COMMIT")
	buildTime := os.Getenv("STUDIOBENCH_BUILD_TIME")

	rowStore, err := buildStore(context.Background())
	if err != nil {
		log.Fatalf("store setup: %v", err)
	}

	saver := persist.NewSaver(rowStore, utils.SafeEnv("STUDIOBENCH_FALLBACK_PATH", "survey_responses.csv"))
	loader := results.NewLoader(rowStore, utils.DurationEnv("STUDIOBENCH_CACHE_TTL", results.DefaultTTL))

	mux := http.NewServeMux()
	api.NewRouter(saver, loader).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":             true,
			"name":           "Studiobench API",
			"schema_version": schema.Version,
			"commit":         commit,
			"build_time":     buildTime,
		})
	})

	// Serve the form/dashboard bundle when configured (fullstack image).
	if staticDir := os.Getenv("STUDIOBENCH_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.SecureHeaders(middleware.CORS(mux)))

	log.Printf("Studiobench server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
