package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when creating a record whose key is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// ContainerRecord is the bookkeeping row for one index/collection. For the
// local serialized-index backend the row additionally holds the index blob;
// for remote backends the blob column stays NULL.
type ContainerRecord struct {
	Name        string
	Backend     string
	Dimension   int
	VectorCount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChunkRecord is the metadata row for one chunk. IntKey is the derived
// integer key used by integer-keyed backends; it is persisted here because
// the mapping back to the chunk id is not derivable in reverse.
type ChunkRecord struct {
	ChunkID     string
	Container   string
	IntKey      int64
	DocID       string
	Title       string
	Category    string
	TextSnippet string
	CreatedAt   time.Time
}
