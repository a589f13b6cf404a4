package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is tabular report content ready for rendering. Every row must have
// exactly as many cells as there are headers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Headers))
		}
	}
	return nil
}

// CSVExporter renders a Dataset into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. The title is not part
// of CSV output.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
