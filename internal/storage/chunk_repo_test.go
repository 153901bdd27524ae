package storage

import (
	"context"
	"testing"
)

func seedContainer(t *testing.T, repo *ContainerRepo, name string) {
	t.Helper()
	if err := repo.Create(context.Background(), &ContainerRecord{Name: name, Backend: "local", Dimension: 4}); err != nil {
		t.Fatalf("failed to seed container: %v", err)
	}
}

func TestChunkRepo_UpsertAndGetByID(t *testing.T) {
	db := newTestDB(t)
	seedContainer(t, NewContainerRepo(db), "news")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	chunk := &ChunkRecord{
		ChunkID:     "chunk-1",
		Container:   "news",
		IntKey:      123456789,
		DocID:       "doc-1",
		Title:       "Quarterly results",
		Category:    "finance",
		TextSnippet: "Revenue grew by 12 percent.",
	}
	if err := repo.Upsert(ctx, chunk); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "chunk-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.DocID != "doc-1" || got.Category != "finance" || got.IntKey != 123456789 {
		t.Errorf("GetByID() = %+v", got)
	}
}

func TestChunkRepo_UpsertReplacesByKey(t *testing.T) {
	db := newTestDB(t)
	seedContainer(t, NewContainerRepo(db), "news")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	chunk := &ChunkRecord{ChunkID: "chunk-1", Container: "news", IntKey: 1, DocID: "doc-1", TextSnippet: "first"}
	if err := repo.Upsert(ctx, chunk); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	chunk.TextSnippet = "second"
	if err := repo.Upsert(ctx, chunk); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}

	count, err := repo.CountByContainer(ctx, "news")
	if err != nil {
		t.Fatalf("CountByContainer() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count after re-upsert = %d, want 1 (replace, not duplicate)", count)
	}

	got, _ := repo.GetByID(ctx, "chunk-1")
	if got.TextSnippet != "second" {
		t.Errorf("snippet after re-upsert = %q, want %q", got.TextSnippet, "second")
	}
}

func TestChunkRepo_GetByIntKey(t *testing.T) {
	db := newTestDB(t)
	containerRepo := NewContainerRepo(db)
	seedContainer(t, containerRepo, "a")
	seedContainer(t, containerRepo, "b")
	repo := NewChunkRepo(db)
	ctx := context.Background()

	// Same int key in two containers must resolve independently.
	_ = repo.Upsert(ctx, &ChunkRecord{ChunkID: "c1", Container: "a", IntKey: 99, DocID: "d1", TextSnippet: "in a"})
	_ = repo.Upsert(ctx, &ChunkRecord{ChunkID: "c2", Container: "b", IntKey: 99, DocID: "d2", TextSnippet: "in b"})

	got, err := repo.GetByIntKey(ctx, "b", 99)
	if err != nil {
		t.Fatalf("GetByIntKey() error = %v", err)
	}
	if got.ChunkID != "c2" {
		t.Errorf("GetByIntKey() = %q, want c2", got.ChunkID)
	}

	if _, err := repo.GetByIntKey(ctx, "a", 12345); err != ErrNotFound {
		t.Errorf("GetByIntKey(missing) error = %v, want ErrNotFound", err)
	}
}
