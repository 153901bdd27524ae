package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/ingest"
	"tabular-rag/internal/storage"
)

// Scheduler dispatches a background ingestion run.
type Scheduler interface {
	Schedule(csvPath, container string, mapping ingest.ColumnMapping)
}

// IngestHandler handles HTTP requests for starting a background ingestion.
type IngestHandler struct {
	containers storage.ContainerStore
	scheduler  Scheduler
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(containers storage.ContainerStore, scheduler Scheduler) *IngestHandler {
	return &IngestHandler{
		containers: containers,
		scheduler:  scheduler,
	}
}

// IngestRequest represents the HTTP request payload for ingestion. The
// column fields override the conventional CSV column names.
type IngestRequest struct {
	Backend        string `json:"backend"`
	CSVPath        string `json:"csv_path"`
	IndexName      string `json:"index_name"`
	DocIDColumn    string `json:"doc_id_column,omitempty"`
	TitleColumn    string `json:"title_column,omitempty"`
	CategoryColumn string `json:"category_column,omitempty"`
	TextColumn     string `json:"text_column,omitempty"`
}

// IngestResponse represents the HTTP response payload for ingestion.
type IngestResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP validates the request, probes the CSV source and schedules the
// ingestion in the background, returning 202 immediately. Progress is only
// observable through logs and the stored data.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.IndexName == "" {
		writeError(w, http.StatusBadRequest, "index_name is required")
		return
	}
	if req.CSVPath == "" {
		writeError(w, http.StatusBadRequest, "csv_path is required")
		return
	}

	rec, err := h.containers.GetByName(ctx, req.IndexName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Index not found: %s", req.IndexName))
			return
		}
		logger.ErrorContext(ctx, "failed to resolve container", "index", req.IndexName, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve index")
		return
	}
	if req.Backend != "" && req.Backend != rec.Backend {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Index %s belongs to backend %s", req.IndexName, rec.Backend))
		return
	}

	if err := ingest.ProbeCSV(req.CSVPath); err != nil {
		logger.WarnContext(ctx, "CSV probe failed", "csv_path", req.CSVPath, "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unreadable CSV source: %v", err))
		return
	}

	h.scheduler.Schedule(req.CSVPath, req.IndexName, ingest.ColumnMapping{
		DocID:    req.DocIDColumn,
		Title:    req.TitleColumn,
		Category: req.CategoryColumn,
		Text:     req.TextColumn,
	})

	logger.InfoContext(ctx, "ingestion scheduled", "index", req.IndexName, "csv_path", req.CSVPath)
	writeJSON(w, http.StatusAccepted, IngestResponse{
		Message: "Ingestion started. Check server logs for progress.",
		Status:  "accepted",
	})
}
