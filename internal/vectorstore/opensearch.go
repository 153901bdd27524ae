package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"tabular-rag/internal/contextutil"
)

// OpenSearchStore implements Store using an OpenSearch index: embeddings
// live in a knn_vector field alongside keyword-searchable fields, so a
// category filter is evaluated natively inside the nearest-neighbor query
// and no client-side over-fetch is needed.
type OpenSearchStore struct {
	client *opensearch.Client
}

// NewOpenSearchStore creates a new OpenSearch store client (no auth).
func NewOpenSearchStore(addresses []string) (*OpenSearchStore, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}
	return &OpenSearchStore{client: client}, nil
}

// indexMapping returns the schema for a new index: keyword fields for
// filtering, text fields for keyword search, and an HNSW knn_vector field of
// the given dimension.
func indexMapping(dimension int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"index": map[string]any{
				"knn":                      true,
				"knn.algo_param.ef_search": 100,
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"doc_id":       map[string]any{"type": "keyword"},
				"chunk_id":     map[string]any{"type": "keyword"},
				"title":        map[string]any{"type": "text"},
				"category":     map[string]any{"type": "keyword"},
				"text":         map[string]any{"type": "text"},
				"text_snippet": map[string]any{"type": "text"},
				"embedding": map[string]any{
					"type":      "knn_vector",
					"dimension": dimension,
					"method": map[string]any{
						"name":       "hnsw",
						"space_type": "l2",
						"engine":     "faiss",
						"parameters": map[string]any{
							"ef_construction": 128,
							"m":               24,
						},
					},
				},
				"created_at": map[string]any{"type": "date"},
			},
		},
	}
}

// CreateIndex creates the index with its knn mapping. Creation against an
// existing name fails rather than overwrites.
func (s *OpenSearchStore) CreateIndex(ctx context.Context, name string, dimension int) error {
	exists, err := s.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("index %q: %w", name, ErrAlreadyExists)
	}

	body, err := json.Marshal(indexMapping(dimension))
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}
	return nil
}

// IndexExists checks if the index exists.
func (s *OpenSearchStore) IndexExists(ctx context.Context, name string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{name}}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return false, fmt.Errorf("failed to check index existence: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status checking index existence: %d", res.StatusCode)
	}
}

// Upsert bulk-indexes points keyed by chunk id. Re-indexing an existing id
// replaces the document.
func (s *OpenSearchStore) Upsert(ctx context.Context, name string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, point := range points {
		action := map[string]any{
			"index": map[string]any{"_index": name, "_id": point.ChunkID},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}

		source := map[string]any{
			"chunk_id":  point.ChunkID,
			"embedding": point.Vec,
		}
		for k, v := range point.Payload {
			source[k] = v
		}
		if err := json.NewEncoder(&buf).Encode(source); err != nil {
			return fmt.Errorf("failed to encode bulk document: %w", err)
		}
	}

	req := opensearchapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("bulk indexing failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("bulk indexing failed: %s", res.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		return fmt.Errorf("bulk indexing reported item errors")
	}

	logger.InfoContext(ctx, "bulk indexed points", "index", name, "count", len(points))
	return nil
}

// Search runs a native k-NN query, with the category filter evaluated by the
// backend when requested.
func (s *OpenSearchStore) Search(ctx context.Context, name string, query []float32, k int, category string) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	knnClause := map[string]any{
		"knn": map[string]any{
			"embedding": map[string]any{
				"vector": query,
				"k":      k,
			},
		},
	}

	var queryClause map[string]any
	if category != "" {
		queryClause = map[string]any{
			"bool": map[string]any{
				"must":   []any{knnClause},
				"filter": []any{map[string]any{"term": map[string]any{"category": category}}},
			},
		}
	} else {
		queryClause = knnClause
	}

	body, err := json.Marshal(map[string]any{
		"size":    k,
		"query":   queryClause,
		"_source": []string{"doc_id", "chunk_id", "title", "category", "text_snippet"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{name},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var searchResp struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float32        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		hits = append(hits, Hit{
			ChunkID: h.ID,
			Score:   h.Score,
			Meta:    h.Source,
		})
	}

	logger.InfoContext(ctx, "search completed", "index", name, "k", k, "results", len(hits))
	return hits, nil
}

// Count returns the index's document count.
func (s *OpenSearchStore) Count(ctx context.Context, name string) (int64, error) {
	req := opensearchapi.CountRequest{Index: []string{name}}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return 0, fmt.Errorf("count failed: %s", res.String())
	}

	var countResp struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResp.Count, nil
}
