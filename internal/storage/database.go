// Package storage is the metadata sidecar: chunk-level metadata and
// container bookkeeping in SQLite, independent of which vector backend holds
// the embeddings. For the local serialized index, the container record also
// owns the index blob.
package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS containers (
			name TEXT PRIMARY KEY,
			backend TEXT NOT NULL,
			dimension INTEGER NOT NULL,
			vector_count INTEGER NOT NULL DEFAULT 0,
			index_blob BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id TEXT PRIMARY KEY,
			container TEXT NOT NULL,
			int_key INTEGER NOT NULL,
			doc_id TEXT NOT NULL,
			title TEXT,
			category TEXT,
			text_snippet TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (container) REFERENCES containers(name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_container_int_key
			ON chunks(container, int_key);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
