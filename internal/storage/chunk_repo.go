package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks tabular-rag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk metadata operations.
type ChunkStore interface {
	// Upsert writes a chunk record, replacing any existing record with the
	// same chunk id (idempotent by key).
	Upsert(ctx context.Context, chunk *ChunkRecord) error
	// GetByID gets a chunk by its id. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, chunkID string) (*ChunkRecord, error)
	// GetByIntKey gets a chunk by its derived integer key within a container.
	// Returns ErrNotFound if not found.
	GetByIntKey(ctx context.Context, container string, intKey int64) (*ChunkRecord, error)
	// CountByContainer returns how many chunk records a container holds.
	CountByContainer(ctx context.Context, container string) (int64, error)
}

// ChunkRepo provides methods for chunk metadata operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Upsert writes a chunk record keyed by chunk id.
func (r *ChunkRepo) Upsert(ctx context.Context, chunk *ChunkRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chunks (chunk_id, container, int_key, doc_id, title, category, text_snippet)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chunk_id) DO UPDATE SET
			container = excluded.container,
			int_key = excluded.int_key,
			doc_id = excluded.doc_id,
			title = excluded.title,
			category = excluded.category,
			text_snippet = excluded.text_snippet`,
		chunk.ChunkID, chunk.Container, chunk.IntKey, chunk.DocID, chunk.Title, chunk.Category, chunk.TextSnippet,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

// GetByID gets a chunk by its id. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, chunkID string) (*ChunkRecord, error) {
	return r.get(ctx,
		"SELECT chunk_id, container, int_key, doc_id, title, category, text_snippet, created_at FROM chunks WHERE chunk_id = ?",
		chunkID,
	)
}

// GetByIntKey gets a chunk by its derived integer key within a container.
func (r *ChunkRepo) GetByIntKey(ctx context.Context, container string, intKey int64) (*ChunkRecord, error) {
	return r.get(ctx,
		"SELECT chunk_id, container, int_key, doc_id, title, category, text_snippet, created_at FROM chunks WHERE container = ? AND int_key = ?",
		container, intKey,
	)
}

// CountByContainer returns how many chunk records a container holds.
func (r *ChunkRepo) CountByContainer(ctx context.Context, container string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE container = ?",
		container,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func (r *ChunkRepo) get(ctx context.Context, query string, args ...any) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&chunk.ChunkID, &chunk.Container, &chunk.IntKey, &chunk.DocID,
		&chunk.Title, &chunk.Category, &chunk.TextSnippet, &chunk.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}
