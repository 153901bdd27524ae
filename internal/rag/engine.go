// Package rag answers queries by retrieving relevant chunks from a vector
// backend and generating an answer over them.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

// NoResultsAnswer is returned verbatim when retrieval finds nothing; the
// generator is not called in that case.
const NoResultsAnswer = "No relevant documents found."

// ErrUnknownBackend is returned when the requested backend is not registered.
var ErrUnknownBackend = errors.New("unknown backend")

// Embedder embeds a single query string.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from the query and retrieved snippets. It
// never fails; degraded output is an answer describing the failure.
type Generator interface {
	Generate(ctx context.Context, query string, snippets []string) string
}

// Engine runs the search-then-generate flow over the configured backends.
type Engine struct {
	stores     map[string]vectorstore.Store
	containers storage.ContainerStore
	chunks     storage.ChunkStore
	embedder   Embedder
	generator  Generator
	logger     *slog.Logger
}

// NewEngine creates a new query engine over the given backend registry.
func NewEngine(
	stores map[string]vectorstore.Store,
	containers storage.ContainerStore,
	chunks storage.ChunkStore,
	embedder Embedder,
	generator Generator,
) *Engine {
	return &Engine{
		stores:     stores,
		containers: containers,
		chunks:     chunks,
		embedder:   embedder,
		generator:  generator,
		logger:     slog.Default(),
	}
}

// Query embeds the query once, searches the requested backend, joins hits to
// their sidecar metadata and generates an answer over the surviving contexts.
// Hits whose metadata row is missing are dropped silently.
func (e *Engine) Query(ctx context.Context, req Request) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	store, ok := e.stores[req.Backend]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownBackend, req.Backend)
	}

	if _, err := e.containers.GetByName(ctx, req.Container); err != nil {
		return Response{}, fmt.Errorf("failed to resolve container %q: %w", req.Container, err)
	}

	k := req.TopK
	if k <= 0 {
		k = 5
	}
	if k > 20 {
		k = 20
	}

	logger.InfoContext(ctx, "query started",
		"backend", req.Backend,
		"container", req.Container,
		"k", k,
		"category", req.Category,
	)

	vec, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		return Response{}, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := store.Search(ctx, req.Container, vec, k, req.Category)
	if err != nil {
		return Response{}, fmt.Errorf("search failed: %w", err)
	}

	contexts := make([]Context, 0, k)
	for _, hit := range hits {
		rec, err := e.lookup(ctx, req.Container, hit)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.WarnContext(ctx, "dropping hit without metadata", "chunk_id", hit.ChunkID, "int_key", hit.IntKey)
				continue
			}
			return Response{}, fmt.Errorf("failed to fetch chunk metadata: %w", err)
		}

		// Backends without native filtering return unfiltered candidates; the
		// category check is re-applied here against the sidecar row.
		if req.Category != "" && rec.Category != req.Category {
			continue
		}

		contexts = append(contexts, Context{
			ChunkID:     rec.ChunkID,
			DocID:       rec.DocID,
			Title:       rec.Title,
			Category:    rec.Category,
			TextSnippet: rec.TextSnippet,
			Score:       hit.Score,
		})
		if len(contexts) >= k {
			break
		}
	}

	resp := Response{
		Query:    req.Query,
		Contexts: contexts,
		TopK:     k,
		Backend:  req.Backend,
	}

	if len(contexts) == 0 {
		logger.InfoContext(ctx, "no contexts retrieved", "container", req.Container)
		resp.Answer = NoResultsAnswer
		return resp, nil
	}

	snippets := make([]string, len(contexts))
	for i, c := range contexts {
		snippets[i] = c.TextSnippet
	}

	resp.Answer = e.generator.Generate(ctx, req.Query, snippets)
	logger.InfoContext(ctx, "query completed", "container", req.Container, "contexts", len(contexts), "answer_length", len(resp.Answer))
	return resp, nil
}

// lookup resolves a hit to its sidecar row: string-keyed backends return the
// chunk id directly, integer-keyed ones only the derived key.
func (e *Engine) lookup(ctx context.Context, container string, hit vectorstore.Hit) (*storage.ChunkRecord, error) {
	if hit.ChunkID != "" {
		return e.chunks.GetByID(ctx, hit.ChunkID)
	}
	return e.chunks.GetByIntKey(ctx, container, hit.IntKey)
}
