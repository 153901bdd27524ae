// Package vectorstore defines the common contract over the three vector
// search backends and their adapters.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks tabular-rag/internal/vectorstore Store

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrAlreadyExists is returned when creating an index whose name is taken.
	ErrAlreadyExists = errors.New("index already exists")
	// ErrNotFound is returned when an index does not exist.
	ErrNotFound = errors.New("index not found")
)

// Point is one vector to upsert. ChunkID is the canonical key; IntKey is the
// derived integer key for backends that cannot store string keys. Payload
// carries display metadata for backends that store it alongside the vector.
type Point struct {
	ChunkID string
	IntKey  int64
	Vec     []float32
	Payload map[string]any
}

// Hit is one ranked search result. ChunkID is empty for integer-keyed
// backends, which only return IntKey; Meta is nil for backends that store no
// payload. Score semantics are backend-dependent (higher is more relevant);
// scores must never be compared across backends.
type Hit struct {
	ChunkID string
	IntKey  int64
	Score   float32
	Meta    map[string]any
}

// Store is the adapter contract shared by all backends.
type Store interface {
	// CreateIndex creates a named container bound to one embedding dimension.
	// Returns ErrAlreadyExists rather than overwriting.
	CreateIndex(ctx context.Context, name string, dimension int) error

	// IndexExists reports whether the container exists on the backend.
	IndexExists(ctx context.Context, name string) (bool, error)

	// Upsert writes points into the container, replacing entries whose key
	// already exists (idempotent by key).
	Upsert(ctx context.Context, name string, points []Point) error

	// Search returns up to k hits ranked by relevance. When category is
	// non-empty and the backend cannot filter natively, the adapter
	// over-fetches and the filter is applied client-side; fewer than k hits
	// can come back even when more matches exist (known recall limitation).
	Search(ctx context.Context, name string, query []float32, k int, category string) ([]Hit, error)

	// Count returns the backend's authoritative vector count.
	Count(ctx context.Context, name string) (int64, error)
}

// NormalizeL2 scales vec to unit length in place and returns it. Vectors
// destined for cosine similarity are normalized by the adapter, both at
// storage and at query time, never by the caller. Zero vectors are returned
// unchanged.
func NormalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
