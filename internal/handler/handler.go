package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"webofworlds/internal/graphdb"
	"webofworlds/internal/service"
)

// RunHandler handles run API requests
type RunHandler struct {
	svc           *service.RunService
	defaultFormat string
	logger        *slog.Logger
}

// NewRunHandler creates a new run handler. defaultFormat is used for exports
// that do not name one.
func NewRunHandler(svc *service.RunService, defaultFormat string, logger *slog.Logger) *RunHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultFormat == "" {
		defaultFormat = "json"
	}
	return &RunHandler{svc: svc, defaultFormat: defaultFormat, logger: logger}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListRuns returns all runs, newest first
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListRuns(r.Context())
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.writeError(w, "Failed to list runs", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, runs, http.StatusOK)
}

// GetRun returns a single run's metadata
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get run", err)
		return
	}

	h.writeJSON(w, run, http.StatusOK)
}

// GetRunGraph returns the renderer graph of a run
func (h *RunHandler) GetRunGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	graph, err := h.svc.GetRunGraph(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get run graph", err)
		return
	}

	h.writeJSON(w, graph, http.StatusOK)
}

// GetRunMirror reports how much of a run the graph database holds
func (h *RunHandler) GetRunMirror(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	mirror, err := h.svc.GetRunMirror(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to read run mirror", err)
		return
	}

	h.writeJSON(w, mirror, http.StatusOK)
}

// DeleteRun deletes a run
func (h *RunHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteRun(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete run", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportRun writes a run as a downloadable file. The format query parameter
// selects the codec.
func (h *RunHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid run ID", "Run ID is required", http.StatusBadRequest)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = h.defaultFormat
	}

	contentType, ext := "application/json", "json"
	switch format {
	case "json":
	case "yaml", "yml":
		contentType, ext = "application/x-yaml", "yaml"
	default:
		h.writeError(w, "Unsupported format", fmt.Sprintf("format %q", format), http.StatusBadRequest)
		return
	}

	// Resolve the run first so a missing run still gets a JSON error body
	if _, err := h.svc.GetRun(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to export run", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=run-%s.%s", id, ext))

	if err := h.svc.Export(r.Context(), id, format, w); err != nil {
		h.logger.Error("failed to export run", "run", id, "format", format, "error", err)
		// Can't write error response as we already set headers
		return
	}
}

// Helper methods

func (h *RunHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, graphdb.ErrNotMirrored):
		h.writeError(w, "Not mirrored", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrUnknownFormat):
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrGraphDisabled):
		h.writeError(w, "Graph disabled", err.Error(), http.StatusNotImplemented)
	default:
		h.logger.Error(strings.ToLower(msg), "error", err)
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

func (h *RunHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *RunHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
