package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore/flat"
)

// localOverfetch is the over-fetch multiplier used when a category filter is
// requested. The index itself holds no metadata, so the filter is applied
// downstream at the metadata join; over-fetching here widens the candidate
// window the filter operates on.
const localOverfetch = 10

// LocalStore implements Store over a flat index serialized into the
// container's blob column. Every Upsert is a read-modify-write of the entire
// blob: fetch, deserialize, mutate, reserialize, write back. That cycle is
// not transactional against the database, so all mutating operations for a
// given container are serialized through a per-container mutex. At most one
// mutator per container at a time is a correctness requirement: without it,
// two concurrent ingestions both read the same starting blob and the last
// writer silently discards the other's vectors.
type LocalStore struct {
	containers storage.ContainerStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalStore creates a local serialized-index store backed by the given
// container repository.
func NewLocalStore(containers storage.ContainerStore) *LocalStore {
	return &LocalStore{
		containers: containers,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lock returns the mutex guarding one container's blob, creating it on first
// use.
func (s *LocalStore) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// CreateIndex initializes an empty serialized index in the container's blob
// column. The container record itself must already exist.
func (s *LocalStore) CreateIndex(ctx context.Context, name string, dimension int) error {
	blob, err := flat.Encode(flat.New(dimension))
	if err != nil {
		return err
	}
	if err := s.containers.SaveBlob(ctx, name, blob, 0); err != nil {
		return fmt.Errorf("failed to store initial index: %w", err)
	}
	return nil
}

// IndexExists reports whether the container holds a serialized index.
func (s *LocalStore) IndexExists(ctx context.Context, name string) (bool, error) {
	blob, err := s.containers.LoadBlob(ctx, name)
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return blob != nil, nil
}

// Upsert adds points to the serialized index under their integer keys.
// Vectors are L2-normalized before storage so inner-product search behaves
// as cosine similarity.
func (s *LocalStore) Upsert(ctx context.Context, name string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	ix, err := s.load(ctx, name)
	if err != nil {
		return err
	}

	ids := make([]int64, len(points))
	vecs := make([][]float32, len(points))
	for i, p := range points {
		ids[i] = p.IntKey
		vecs[i] = NormalizeL2(p.Vec)
	}

	if err := ix.Add(ids, vecs); err != nil {
		return fmt.Errorf("failed to add vectors: %w", err)
	}

	blob, err := flat.Encode(ix)
	if err != nil {
		return err
	}
	if err := s.containers.SaveBlob(ctx, name, blob, int64(ix.Len())); err != nil {
		return fmt.Errorf("failed to write back index: %w", err)
	}

	logger.InfoContext(ctx, "upserted vectors into local index", "index", name, "count", len(points), "total", ix.Len())
	return nil
}

// Search runs nearest-neighbor search over the serialized index. When a
// category filter is requested the candidate count is widened to
// k*localOverfetch; relevant hits outside that window are missed, which is a
// documented recall limitation of client-side filtering.
func (s *LocalStore) Search(ctx context.Context, name string, query []float32, k int, category string) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	ix, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	searchK := k
	if category != "" {
		searchK = k * localOverfetch
	}

	q := NormalizeL2(append([]float32(nil), query...))
	ids, scores, err := ix.Search(q, searchK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index %q: %w", name, err)
	}

	hits := make([]Hit, 0, len(ids))
	for i, id := range ids {
		hits = append(hits, Hit{IntKey: id, Score: scores[i]})
	}
	return hits, nil
}

// Count returns the number of vectors in the serialized index.
func (s *LocalStore) Count(ctx context.Context, name string) (int64, error) {
	ix, err := s.load(ctx, name)
	if err != nil {
		return 0, err
	}
	return int64(ix.Len()), nil
}

func (s *LocalStore) load(ctx context.Context, name string) (*flat.Index, error) {
	blob, err := s.containers.LoadBlob(ctx, name)
	if err == storage.ErrNotFound {
		return nil, fmt.Errorf("index %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("index %q: %w", name, ErrNotFound)
	}
	return flat.Decode(blob)
}
