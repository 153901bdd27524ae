package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByCategory(t *testing.T) {
	hits := []Hit{
		{ChunkID: "a", Score: 0.9, Meta: map[string]any{"category": "faq"}},
		{ChunkID: "b", Score: 0.8, Meta: map[string]any{"category": "manual"}},
		{ChunkID: "c", Score: 0.7, Meta: map[string]any{"category": "faq"}},
		{ChunkID: "d", Score: 0.6, Meta: map[string]any{}},
		{ChunkID: "e", Score: 0.5, Meta: map[string]any{"category": "faq"}},
	}

	tests := []struct {
		name     string
		category string
		k        int
		want     []string
	}{
		{
			name:     "no filter keeps ranking and truncates to k",
			category: "",
			k:        3,
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "filter drops other categories",
			category: "faq",
			k:        10,
			want:     []string{"a", "c", "e"},
		},
		{
			name:     "filter truncates to k after dropping",
			category: "faq",
			k:        2,
			want:     []string{"a", "c"},
		},
		{
			name:     "missing payload field never matches",
			category: "manual",
			k:        10,
			want:     []string{"b"},
		},
		{
			name:     "no match yields empty result",
			category: "legal",
			k:        5,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByCategory(hits, tt.category, tt.k)
			ids := make([]string, 0, len(got))
			for _, h := range got {
				ids = append(ids, h.ChunkID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://not-a-url")
	assert.Error(t, err)
}

func TestNormalizeL2(t *testing.T) {
	vec := NormalizeL2([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[1]), 1e-6)

	zero := NormalizeL2([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
