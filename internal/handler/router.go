package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthProbe reports whether a backing store is reachable
type HealthProbe func(ctx context.Context) error

// RouterDependencies collects handler dependencies
type RouterDependencies struct {
	Runs   *RunHandler
	Events http.Handler
	Health HealthProbe
}

// NewRouter wires the HTTP routes exposed by the server
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{"status": "ok"}

		if deps.Health != nil {
			if err := deps.Health(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	})

	if deps.Runs != nil {
		mux.HandleFunc("GET /api/runs", deps.Runs.ListRuns)
		mux.HandleFunc("GET /api/runs/{id}", deps.Runs.GetRun)
		mux.HandleFunc("GET /api/runs/{id}/graph", deps.Runs.GetRunGraph)
		mux.HandleFunc("GET /api/runs/{id}/export", deps.Runs.ExportRun)
		mux.HandleFunc("GET /api/runs/{id}/mirror", deps.Runs.GetRunMirror)
		mux.HandleFunc("DELETE /api/runs/{id}", deps.Runs.DeleteRun)
	}

	if deps.Events != nil {
		mux.Handle("GET /events", deps.Events)
	}

	return Chain(mux,
		Recover(logger),
		CORS,
		Logger(logger),
	)
}
