package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_container_store.go -package=mocks tabular-rag/internal/storage ContainerStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ContainerStore defines the interface for container bookkeeping.
type ContainerStore interface {
	// Create inserts a new container record. Returns ErrAlreadyExists if a
	// container of that name exists; nothing is mutated in that case.
	Create(ctx context.Context, rec *ContainerRecord) error
	// GetByName returns the container record. Returns ErrNotFound if absent.
	GetByName(ctx context.Context, name string) (*ContainerRecord, error)
	// Delete removes a container record.
	Delete(ctx context.Context, name string) error
	// UpdateVectorCount refreshes the advisory vector count and updated_at.
	UpdateVectorCount(ctx context.Context, name string, count int64) error
	// LoadBlob returns the serialized index blob for a local-index container.
	LoadBlob(ctx context.Context, name string) ([]byte, error)
	// SaveBlob overwrites the blob, vector count and updated_at in one write.
	SaveBlob(ctx context.Context, name string, blob []byte, count int64) error
}

// ContainerRepo provides methods for container operations.
// It implements the ContainerStore interface.
type ContainerRepo struct {
	db *sql.DB
}

// NewContainerRepo creates a new ContainerRepo.
func NewContainerRepo(db *sql.DB) *ContainerRepo {
	return &ContainerRepo{db: db}
}

// Create inserts a new container record, failing on a duplicate name. The
// UNIQUE constraint on name decides the winner, so two concurrent creates of
// the same name cannot both succeed.
func (r *ContainerRepo) Create(ctx context.Context, rec *ContainerRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO containers (name, backend, dimension, vector_count) VALUES (?, ?, ?, 0)",
		rec.Name, rec.Backend, rec.Dimension,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert container: %w", err)
	}
	return nil
}

// GetByName returns the container record. Returns ErrNotFound if absent.
func (r *ContainerRepo) GetByName(ctx context.Context, name string) (*ContainerRecord, error) {
	var rec ContainerRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT name, backend, dimension, vector_count, created_at, updated_at FROM containers WHERE name = ?",
		name,
	).Scan(&rec.Name, &rec.Backend, &rec.Dimension, &rec.VectorCount, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query container: %w", err)
	}

	return &rec, nil
}

// Delete removes a container record.
func (r *ContainerRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM containers WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	return nil
}

// UpdateVectorCount refreshes the advisory vector count and updated_at.
func (r *ContainerRepo) UpdateVectorCount(ctx context.Context, name string, count int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE containers SET vector_count = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?",
		count, name,
	)
	if err != nil {
		return fmt.Errorf("failed to update vector count: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadBlob returns the serialized index blob for a local-index container.
// Returns ErrNotFound when the container does not exist; a container that
// exists but has no blob yields a nil slice.
func (r *ContainerRepo) LoadBlob(ctx context.Context, name string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT index_blob FROM containers WHERE name = ?",
		name,
	).Scan(&blob)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load index blob: %w", err)
	}

	return blob, nil
}

// SaveBlob overwrites the stored blob together with the vector count, in a
// single statement so readers never observe one without the other.
func (r *ContainerRepo) SaveBlob(ctx context.Context, name string, blob []byte, count int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE containers SET index_blob = ?, vector_count = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?",
		blob, count, name,
	)
	if err != nil {
		return fmt.Errorf("failed to save index blob: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
