package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ColumnMapping names the CSV columns carrying each document field. Zero
// values fall back to the conventional column names.
type ColumnMapping struct {
	DocID    string
	Title    string
	Category string
	Text     string
}

// withDefaults fills unset mapping fields with the conventional column names.
func (m ColumnMapping) withDefaults() ColumnMapping {
	if m.DocID == "" {
		m.DocID = "id"
	}
	if m.Title == "" {
		m.Title = "title"
	}
	if m.Category == "" {
		m.Category = "category"
	}
	if m.Text == "" {
		m.Text = "text"
	}
	return m
}

// Row is one document row pulled out of a CSV source. Any field whose column
// is absent from the header is left empty.
type Row struct {
	DocID    string
	Title    string
	Category string
	Text     string
}

// ReadCSV reads all rows from the CSV file at path, resolving fields through
// the header and the given column mapping. A text cell holding the literal
// "nan" is treated as empty (an artifact of upstream exports).
func ReadCSV(path string, mapping ColumnMapping) ([]Row, error) {
	mapping = mapping.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		text := field(record, mapping.Text)
		if strings.EqualFold(text, "nan") {
			text = ""
		}

		rows = append(rows, Row{
			DocID:    field(record, mapping.DocID),
			Title:    field(record, mapping.Title),
			Category: field(record, mapping.Category),
			Text:     text,
		})
	}
	return rows, nil
}

// ProbeCSV verifies that the file at path opens and parses as CSV by reading
// the header and the first data row. Callers use it to reject a bad source
// before scheduling a background ingestion.
func ProbeCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	if _, err := reader.Read(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read first CSV row: %w", err)
	}
	return nil
}
