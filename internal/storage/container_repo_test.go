package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestContainerRepo_CreateAndGet(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))
	ctx := context.Background()

	rec := &ContainerRecord{Name: "news", Backend: "local", Dimension: 384}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByName(ctx, "news")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Backend != "local" || got.Dimension != 384 {
		t.Errorf("GetByName() = %+v, want backend=local dimension=384", got)
	}
	if got.VectorCount != 0 {
		t.Errorf("new container vector_count = %d, want 0", got.VectorCount)
	}
}

func TestContainerRepo_CreateDuplicateDoesNotMutate(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &ContainerRecord{Name: "news", Backend: "local", Dimension: 384}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.SaveBlob(ctx, "news", []byte{1, 2, 3}, 7); err != nil {
		t.Fatalf("SaveBlob() error = %v", err)
	}

	err := repo.Create(ctx, &ContainerRecord{Name: "news", Backend: "qdrant", Dimension: 768})
	if err != ErrAlreadyExists {
		t.Fatalf("Create() duplicate error = %v, want ErrAlreadyExists", err)
	}

	// The existing container's count and blob must be untouched.
	got, err := repo.GetByName(ctx, "news")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.VectorCount != 7 || got.Dimension != 384 {
		t.Errorf("duplicate create mutated container: %+v", got)
	}
	blob, err := repo.LoadBlob(ctx, "news")
	if err != nil {
		t.Fatalf("LoadBlob() error = %v", err)
	}
	if len(blob) != 3 {
		t.Errorf("duplicate create mutated blob: %v", blob)
	}
}

func TestContainerRepo_ConcurrentCreateSameName(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))
	ctx := context.Background()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- repo.Create(ctx, &ContainerRecord{Name: "news", Backend: "local", Dimension: 384})
		}()
	}

	var created, duplicate int
	for i := 0; i < 2; i++ {
		switch err := <-errs; err {
		case nil:
			created++
		case ErrAlreadyExists:
			duplicate++
		default:
			t.Fatalf("Create() error = %v, want nil or ErrAlreadyExists", err)
		}
	}
	if created != 1 || duplicate != 1 {
		t.Errorf("concurrent Create() results: %d created, %d duplicate, want 1 and 1", created, duplicate)
	}
}

func TestContainerRepo_GetByNameMissing(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))

	if _, err := repo.GetByName(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("GetByName(missing) error = %v, want ErrNotFound", err)
	}
}

func TestContainerRepo_BlobRoundTrip(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &ContainerRecord{Name: "idx", Backend: "local", Dimension: 4}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A freshly created container has no blob yet.
	blob, err := repo.LoadBlob(ctx, "idx")
	if err != nil {
		t.Fatalf("LoadBlob() error = %v", err)
	}
	if blob != nil {
		t.Errorf("fresh container blob = %v, want nil", blob)
	}

	want := []byte("serialized-index-bytes")
	if err := repo.SaveBlob(ctx, "idx", want, 12); err != nil {
		t.Fatalf("SaveBlob() error = %v", err)
	}

	blob, err = repo.LoadBlob(ctx, "idx")
	if err != nil {
		t.Fatalf("LoadBlob() error = %v", err)
	}
	if string(blob) != string(want) {
		t.Errorf("LoadBlob() = %q, want %q", blob, want)
	}

	got, err := repo.GetByName(ctx, "idx")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.VectorCount != 12 {
		t.Errorf("vector_count after SaveBlob = %d, want 12", got.VectorCount)
	}
}

func TestContainerRepo_UpdateVectorCount(t *testing.T) {
	repo := NewContainerRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.UpdateVectorCount(ctx, "missing", 5); err != ErrNotFound {
		t.Errorf("UpdateVectorCount(missing) error = %v, want ErrNotFound", err)
	}

	if err := repo.Create(ctx, &ContainerRecord{Name: "idx", Backend: "qdrant", Dimension: 4}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.UpdateVectorCount(ctx, "idx", 42); err != nil {
		t.Fatalf("UpdateVectorCount() error = %v", err)
	}

	got, _ := repo.GetByName(ctx, "idx")
	if got.VectorCount != 42 {
		t.Errorf("vector_count = %d, want 42", got.VectorCount)
	}
}
