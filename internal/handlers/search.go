package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/rag"
	"tabular-rag/internal/storage"
)

// QueryEngine answers retrieval-augmented queries.
type QueryEngine interface {
	Query(ctx context.Context, req rag.Request) (rag.Response, error)
}

// SearchHandler handles HTTP requests for retrieval-augmented queries.
type SearchHandler struct {
	engine QueryEngine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine QueryEngine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// ServeHTTP handles HTTP requests for retrieval-augmented queries.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req rag.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Container == "" {
		writeError(w, http.StatusBadRequest, "index_name is required")
		return
	}

	resp, err := h.engine.Query(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrUnknownBackend):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Index not found: "+req.Container)
		default:
			logger.ErrorContext(ctx, "query failed", "index", req.Container, "error", err)
			writeError(w, http.StatusInternalServerError, "Query failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
