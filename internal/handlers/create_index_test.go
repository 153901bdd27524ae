package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"tabular-rag/internal/handlers"
	"tabular-rag/internal/storage"
	storagemocks "tabular-rag/internal/storage/mocks"
	"tabular-rag/internal/vectorstore"
	vsmocks "tabular-rag/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postJSON(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateIndexHandler(t *testing.T) {
	tests := []struct {
		name       string
		req        handlers.CreateIndexRequest
		mockSetup  func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore)
		wantStatus int
	}{
		{
			name: "successful creation",
			req:  handlers.CreateIndexRequest{Backend: "qdrant", IndexName: "docs", EmbeddingDim: 768},
			mockSetup: func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {
				containers.EXPECT().
					Create(gomock.Any(), &storage.ContainerRecord{Name: "docs", Backend: "qdrant", Dimension: 768}).
					Return(nil)
				store.EXPECT().CreateIndex(gomock.Any(), "docs", 768).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "duplicate index name",
			req:  handlers.CreateIndexRequest{Backend: "qdrant", IndexName: "docs", EmbeddingDim: 768},
			mockSetup: func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {
				containers.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(storage.ErrAlreadyExists)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown backend",
			req:        handlers.CreateIndexRequest{Backend: "tape-drive", IndexName: "docs", EmbeddingDim: 768},
			mockSetup:  func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing index name",
			req:        handlers.CreateIndexRequest{Backend: "qdrant", EmbeddingDim: 768},
			mockSetup:  func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-positive dimension",
			req:        handlers.CreateIndexRequest{Backend: "qdrant", IndexName: "docs"},
			mockSetup:  func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "backend failure rolls back the record",
			req:  handlers.CreateIndexRequest{Backend: "qdrant", IndexName: "docs", EmbeddingDim: 768},
			mockSetup: func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {
				containers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				store.EXPECT().
					CreateIndex(gomock.Any(), "docs", 768).
					Return(errors.New("connection refused"))
				containers.EXPECT().Delete(gomock.Any(), "docs").Return(nil)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "backend reports existing index",
			req:  handlers.CreateIndexRequest{Backend: "qdrant", IndexName: "docs", EmbeddingDim: 768},
			mockSetup: func(containers *storagemocks.MockContainerStore, store *vsmocks.MockStore) {
				containers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				store.EXPECT().
					CreateIndex(gomock.Any(), "docs", 768).
					Return(vectorstore.ErrAlreadyExists)
				containers.EXPECT().Delete(gomock.Any(), "docs").Return(nil)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			containers := storagemocks.NewMockContainerStore(ctrl)
			store := vsmocks.NewMockStore(ctrl)
			tt.mockSetup(containers, store)

			handler := handlers.NewCreateIndexHandler(containers, map[string]vectorstore.Store{"qdrant": store})
			rec := postJSON(t, handler, tt.req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCreateIndexHandler_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := handlers.NewCreateIndexHandler(storagemocks.NewMockContainerStore(ctrl), nil)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
