package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

// CreateIndexHandler handles HTTP requests for creating a new index.
type CreateIndexHandler struct {
	containers storage.ContainerStore
	stores     map[string]vectorstore.Store
}

// NewCreateIndexHandler creates a new CreateIndexHandler.
func NewCreateIndexHandler(containers storage.ContainerStore, stores map[string]vectorstore.Store) *CreateIndexHandler {
	return &CreateIndexHandler{
		containers: containers,
		stores:     stores,
	}
}

// CreateIndexRequest represents the HTTP request payload for index creation.
type CreateIndexRequest struct {
	Backend      string `json:"backend"`
	IndexName    string `json:"index_name"`
	EmbeddingDim int    `json:"embedding_dim"`
}

// CreateIndexResponse represents the HTTP response payload for index creation.
type CreateIndexResponse struct {
	IndexName string `json:"index_name"`
	Backend   string `json:"backend"`
	Status    string `json:"status"`
}

// ServeHTTP handles HTTP requests for creating a new index. The sidecar
// record is created first so a duplicate name fails before any backend state
// is touched; a backend failure rolls the record back.
func (h *CreateIndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.IndexName == "" {
		writeError(w, http.StatusBadRequest, "index_name is required")
		return
	}
	if req.EmbeddingDim <= 0 {
		writeError(w, http.StatusBadRequest, "embedding_dim must be greater than 0")
		return
	}
	store, ok := h.stores[req.Backend]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown backend: %s", req.Backend))
		return
	}

	rec := &storage.ContainerRecord{
		Name:      req.IndexName,
		Backend:   req.Backend,
		Dimension: req.EmbeddingDim,
	}
	if err := h.containers.Create(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Index already exists: %s", req.IndexName))
			return
		}
		logger.ErrorContext(ctx, "failed to create container record", "index", req.IndexName, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create index")
		return
	}

	if err := store.CreateIndex(ctx, req.IndexName, req.EmbeddingDim); err != nil {
		logger.ErrorContext(ctx, "backend index creation failed", "index", req.IndexName, "backend", req.Backend, "error", err)
		if delErr := h.containers.Delete(ctx, req.IndexName); delErr != nil {
			logger.ErrorContext(ctx, "failed to roll back container record", "index", req.IndexName, "error", delErr)
		}
		if errors.Is(err, vectorstore.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Index already exists: %s", req.IndexName))
			return
		}
		writeError(w, http.StatusBadGateway, "Backend index creation failed")
		return
	}

	logger.InfoContext(ctx, "index created", "index", req.IndexName, "backend", req.Backend, "dimension", req.EmbeddingDim)
	writeJSON(w, http.StatusOK, CreateIndexResponse{
		IndexName: req.IndexName,
		Backend:   req.Backend,
		Status:    "created",
	})
}
