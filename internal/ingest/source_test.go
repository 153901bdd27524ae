package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_DefaultMapping(t *testing.T) {
	path := writeCSV(t, "id,title,category,text\n"+
		"d1, Doc One ,faq,hello\n"+
		"d2,Doc Two,manual,NaN\n")

	rows, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{DocID: "d1", Title: "Doc One", Category: "faq", Text: "hello"}, rows[0])
	// "nan" in any case is an export artifact, not text.
	assert.Equal(t, "", rows[1].Text)
	assert.Equal(t, "d2", rows[1].DocID)
}

func TestReadCSV_ColumnOverrides(t *testing.T) {
	path := writeCSV(t, "article_id,headline,section,body\n"+
		"a1,Breaking,news,story text\n")

	rows, err := ReadCSV(path, ColumnMapping{
		DocID:    "article_id",
		Title:    "headline",
		Category: "section",
		Text:     "body",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{DocID: "a1", Title: "Breaking", Category: "news", Text: "story text"}, rows[0])
}

func TestReadCSV_MissingColumnsLeftEmpty(t *testing.T) {
	path := writeCSV(t, "text\njust text\n")

	rows, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "just text", rows[0].Text)
	assert.Empty(t, rows[0].DocID)
	assert.Empty(t, rows[0].Title)
	assert.Empty(t, rows[0].Category)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	path := writeCSV(t, "id,title,category,text\nd1,Short\n")

	rows, err := ReadCSV(path, ColumnMapping{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "d1", rows[0].DocID)
	assert.Empty(t, rows[0].Text)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"), ColumnMapping{})
	assert.Error(t, err)
}

func TestProbeCSV(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeCSV(t, "id,text\nd1,hello\n")
		assert.NoError(t, ProbeCSV(path))
	})

	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "id,text\n")
		assert.NoError(t, ProbeCSV(path))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, ProbeCSV(filepath.Join(t.TempDir(), "absent.csv")))
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		assert.Error(t, ProbeCSV(path))
	})

	t.Run("malformed quoting", func(t *testing.T) {
		path := writeCSV(t, "id,text\nd1,\"unterminated\n")
		assert.Error(t, ProbeCSV(path))
	})
}
