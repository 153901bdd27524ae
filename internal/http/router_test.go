package http_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	internalhttp "tabular-rag/internal/http"
	"tabular-rag/internal/ingest"
	"tabular-rag/internal/rag"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type noopScheduler struct{}

func (noopScheduler) Schedule(csvPath, container string, mapping ingest.ColumnMapping) {}

type noopEngine struct{}

func (noopEngine) Query(ctx context.Context, req rag.Request) (rag.Response, error) {
	return rag.Response{Answer: rag.NoResultsAnswer}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	containers := storage.NewContainerRepo(db)
	return internalhttp.NewRouter(&internalhttp.Deps{
		DB:         db,
		Containers: containers,
		Stores: map[string]vectorstore.Store{
			"local": vectorstore.NewLocalStore(containers),
		},
		Scheduler: noopScheduler{},
		Engine:    noopEngine{},
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "health endpoint",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "create index",
			method:     http.MethodPost,
			path:       "/api/v1/index/create",
			body:       `{"backend":"local","index_name":"docs","embedding_dim":4}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "search query",
			method:     http.MethodPost,
			path:       "/api/v1/search/query",
			body:       `{"backend":"local","index_name":"docs","query":"hello"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method on create",
			method:     http.MethodGet,
			path:       "/api/v1/index/create",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search/query", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://example.com")
	}
}

func TestRouter_CreateThenIngestValidation(t *testing.T) {
	router := newTestRouter(t)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/index/create",
		bytes.NewReader([]byte(`{"backend":"local","index_name":"docs","embedding_dim":4}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, create)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Same name again must be rejected without touching the stored record.
	dup := httptest.NewRequest(http.MethodPost, "/api/v1/index/create",
		bytes.NewReader([]byte(`{"backend":"local","index_name":"docs","embedding_dim":8}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, dup)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Ingest against a container that does not exist.
	ingestReq := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/start",
		bytes.NewReader([]byte(`{"backend":"local","index_name":"ghost","csv_path":"/tmp/docs.csv"}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, ingestReq)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ingest status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
