// Package flat implements a brute-force inner-product vector index with
// int64 keys, serializable to a single binary blob. It is the in-memory half
// of the local serialized-index backend: the adapter deserializes the blob,
// mutates the live index, and writes the whole structure back.
package flat

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
)

// Index is a flat inner-product index. Vectors are stored as given; callers
// that want cosine similarity normalize before Add and before Search.
type Index struct {
	Dimension int
	IDs       []int64
	Vectors   [][]float32
}

// New creates an empty index bound to one embedding dimension.
func New(dimension int) *Index {
	return &Index{Dimension: dimension}
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	return len(ix.IDs)
}

// Add inserts vectors under their integer keys. A key that is already
// present has its vector replaced rather than duplicated.
func (ix *Index) Add(ids []int64, vecs [][]float32) error {
	if len(ids) != len(vecs) {
		return fmt.Errorf("id/vector length mismatch: %d vs %d", len(ids), len(vecs))
	}

	pos := make(map[int64]int, len(ix.IDs))
	for i, id := range ix.IDs {
		pos[id] = i
	}

	for i, id := range ids {
		if len(vecs[i]) != ix.Dimension {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(vecs[i]), ix.Dimension)
		}
		if j, ok := pos[id]; ok {
			ix.Vectors[j] = vecs[i]
			continue
		}
		pos[id] = len(ix.IDs)
		ix.IDs = append(ix.IDs, id)
		ix.Vectors = append(ix.Vectors, vecs[i])
	}
	return nil
}

// Search returns the ids and inner-product scores of the k vectors most
// similar to query, best first. Fewer than k results come back when the
// index holds fewer vectors. A query whose dimension differs from the
// index's is an error.
func (ix *Index) Search(query []float32, k int) ([]int64, []float32, error) {
	if len(query) != ix.Dimension {
		return nil, nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), ix.Dimension)
	}
	if k <= 0 || ix.Len() == 0 {
		return nil, nil, nil
	}
	if k > ix.Len() {
		k = ix.Len()
	}

	type scored struct {
		id    int64
		score float32
	}
	results := make([]scored, 0, ix.Len())
	for i, vec := range ix.Vectors {
		var dot float32
		for j := range vec {
			dot += vec[j] * query[j]
		}
		results = append(results, scored{id: ix.IDs[i], score: dot})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	ids := make([]int64, k)
	scores := make([]float32, k)
	for i := 0; i < k; i++ {
		ids[i] = results[i].id
		scores[i] = results[i].score
	}
	return ids, scores, nil
}

// Encode serializes the entire index to a binary blob.
func Encode(ix *Index) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ix); err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores an index from its serialized form.
func Decode(blob []byte) (*Index, error) {
	var ix Index
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&ix); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &ix, nil
}
