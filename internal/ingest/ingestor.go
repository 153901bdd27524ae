// Package ingest turns tabular document sources into embedded, indexed
// chunks across the configured vector backends.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tabular-rag/internal/chunker"
	"tabular-rag/internal/contextutil"
	"tabular-rag/internal/keys"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

// Embedder is the embedding dependency of the ingestor.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options tunes chunking and batching. Zero values pick the defaults.
type Options struct {
	MaxWords  int
	Overlap   int
	BatchSize int
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = 140
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 64
	}
	return o
}

// chunkWork is one chunk waiting for its embedding.
type chunkWork struct {
	record *storage.ChunkRecord
	text   string
}

// Ingestor orchestrates ingestion of a CSV source into one container: read
// rows, chunk, embed in batches, upsert vectors and sidecar metadata, then
// refresh the container's vector count from the backend's authoritative
// count. Re-running an ingestion mints fresh chunk ids, so the same source
// ingested twice is stored twice.
type Ingestor struct {
	containers storage.ContainerStore
	chunks     storage.ChunkStore
	stores     map[string]vectorstore.Store
	embedder   Embedder
	opts       Options
	logger     *slog.Logger
}

// NewIngestor creates a new ingestion orchestrator over the given backend
// registry.
func NewIngestor(
	containers storage.ContainerStore,
	chunks storage.ChunkStore,
	stores map[string]vectorstore.Store,
	embedder Embedder,
	opts Options,
) *Ingestor {
	return &Ingestor{
		containers: containers,
		chunks:     chunks,
		stores:     stores,
		embedder:   embedder,
		opts:       opts.withDefaults(),
		logger:     slog.Default(),
	}
}

// Run ingests the CSV file at csvPath into the named container. Rows with no
// usable text are skipped silently; any embedding or storage failure aborts
// the run with everything already written left in place.
func (ing *Ingestor) Run(ctx context.Context, csvPath, container string, mapping ColumnMapping) error {
	logger := contextutil.LoggerFromContext(ctx)

	rec, err := ing.containers.GetByName(ctx, container)
	if err != nil {
		return fmt.Errorf("failed to resolve container %q: %w", container, err)
	}

	store, ok := ing.stores[rec.Backend]
	if !ok {
		return fmt.Errorf("unknown backend %q for container %q", rec.Backend, container)
	}

	rows, err := ReadCSV(csvPath, mapping)
	if err != nil {
		return err
	}

	var pending []chunkWork
	skipped := 0
	for _, row := range rows {
		if row.Text == "" {
			skipped++
			continue
		}

		docID := row.DocID
		if docID == "" {
			docID = uuid.New().String()
		}

		for _, text := range chunker.Split(row.Text, ing.opts.MaxWords, ing.opts.Overlap) {
			chunkID := uuid.New().String()
			pending = append(pending, chunkWork{
				record: &storage.ChunkRecord{
					ChunkID:     chunkID,
					Container:   container,
					IntKey:      keys.IntKey(chunkID),
					DocID:       docID,
					Title:       row.Title,
					Category:    row.Category,
					TextSnippet: snippet(text, 400),
					CreatedAt:   time.Now().UTC(),
				},
				text: text,
			})
		}
	}

	logger.InfoContext(ctx, "starting ingestion",
		"container", container,
		"backend", rec.Backend,
		"rows", len(rows),
		"skipped", skipped,
		"chunks", len(pending),
	)

	for start := 0; start < len(pending); start += ing.opts.BatchSize {
		end := start + ing.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		if err := ing.processBatch(ctx, store, container, pending[start:end]); err != nil {
			return fmt.Errorf("batch starting at chunk %d failed: %w", start, err)
		}
	}

	// The backend's count is authoritative; the sidecar column is advisory.
	count, err := store.Count(ctx, container)
	if err != nil {
		return fmt.Errorf("failed to read back vector count: %w", err)
	}
	if err := ing.containers.UpdateVectorCount(ctx, container, count); err != nil {
		return fmt.Errorf("failed to update vector count: %w", err)
	}

	logger.InfoContext(ctx, "ingestion complete", "container", container, "chunks", len(pending), "vector_count", count)
	return nil
}

// processBatch embeds one batch and writes vectors and sidecar rows.
func (ing *Ingestor) processBatch(ctx context.Context, store vectorstore.Store, container string, batch []chunkWork) error {
	texts := make([]string, len(batch))
	for i, w := range batch {
		texts[i] = w.text
	}

	vecs, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(vecs) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vecs))
	}

	points := make([]vectorstore.Point, len(batch))
	for i, w := range batch {
		points[i] = vectorstore.Point{
			ChunkID: w.record.ChunkID,
			IntKey:  w.record.IntKey,
			Vec:     vecs[i],
			Payload: map[string]any{
				"doc_id":       w.record.DocID,
				"title":        w.record.Title,
				"category":     w.record.Category,
				"text":         w.text,
				"text_snippet": w.record.TextSnippet,
			},
		}
	}

	if err := store.Upsert(ctx, container, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	for _, w := range batch {
		if err := ing.chunks.Upsert(ctx, w.record); err != nil {
			return fmt.Errorf("failed to upsert chunk record: %w", err)
		}
	}
	return nil
}

// Schedule dispatches Run in a detached goroutine so the caller can return
// immediately. The outcome is only observable through logs and the stored
// data; there is no job handle.
func (ing *Ingestor) Schedule(csvPath, container string, mapping ColumnMapping) {
	go func() {
		ctx := contextutil.WithLogger(context.Background(), ing.logger)
		if err := ing.Run(ctx, csvPath, container, mapping); err != nil {
			ing.logger.Error("background ingestion failed", "container", container, "csv_path", csvPath, "error", err)
			return
		}
		ing.logger.Info("background ingestion finished", "container", container, "csv_path", csvPath)
	}()
}

// snippet returns the first n runes of text.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
