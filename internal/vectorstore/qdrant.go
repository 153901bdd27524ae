package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"tabular-rag/internal/contextutil"
)

// qdrantOverfetch is the over-fetch multiplier applied when filtering by
// category: the filter is evaluated client-side on the returned payloads, so
// the search requests more candidates than the caller asked for.
const qdrantOverfetch = 2

// QdrantStore implements Store using a managed Qdrant collection. Vectors and
// payload live in the remote collection keyed by chunk id; the collection
// itself serializes writes, so no client-side locking is needed.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is conventionally the HTTP port + 1.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// CreateIndex creates a collection with cosine distance. Creation against an
// existing name fails rather than overwrites.
func (s *QdrantStore) CreateIndex(ctx context.Context, name string, dimension int) error {
	exists, err := s.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("collection %q: %w", name, ErrAlreadyExists)
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// IndexExists checks if a collection exists.
func (s *QdrantStore) IndexExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// Upsert inserts or updates points in the collection, keyed by chunk id.
func (s *QdrantStore) Upsert(ctx context.Context, name string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qp := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ChunkID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}
		if len(point.Payload) > 0 {
			qp.Payload = qdrant.NewValueMap(point.Payload)
		}
		qdrantPoints = append(qdrantPoints, qp)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", name, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", name, "count", len(points))
	return nil
}

// Search performs a similarity search. The category filter is evaluated
// client-side on payloads over a widened candidate set, preserving the
// backend's observed behavior; hits beyond the over-fetch window are missed.
func (s *QdrantStore) Search(ctx context.Context, name string, query []float32, k int, category string) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	if category != "" {
		limit = uint64(k * qdrantOverfetch)
	}

	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", name, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]Hit, 0, len(scoredPoints))
	for _, result := range scoredPoints {
		chunkID := ""
		if result.Id != nil {
			chunkID = result.Id.GetUuid()
		}

		meta := map[string]any{}
		if result.Payload != nil {
			meta = convertPayloadToMap(result.Payload)
		}

		hits = append(hits, Hit{
			ChunkID: chunkID,
			Score:   result.Score,
			Meta:    meta,
		})
	}

	hits = FilterByCategory(hits, category, k)
	logger.InfoContext(ctx, "search completed", "collection", name, "k", k, "results", len(hits))
	return hits, nil
}

// Count returns the collection's point count.
func (s *QdrantStore) Count(ctx context.Context, name string) (int64, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}
	if info.PointsCount == nil {
		return 0, nil
	}
	return int64(*info.PointsCount), nil
}

// FilterByCategory drops hits whose payload category differs from the
// requested one and truncates to k. An empty category keeps everything up to
// k. Hits without a category field in their payload are dropped when a
// filter is active.
func FilterByCategory(hits []Hit, category string, k int) []Hit {
	filtered := make([]Hit, 0, k)
	for _, hit := range hits {
		if category != "" {
			got, _ := hit.Meta["category"].(string)
			if got != category {
				continue
			}
		}
		filtered = append(filtered, hit)
		if len(filtered) >= k {
			break
		}
	}
	return filtered
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to a plain Go value.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
