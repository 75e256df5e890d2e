package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Agenda is the tabular form of a user's schedule handed to exporters.
// Rows are ordered the way the query service returned them (start ascending).
type Agenda struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// CSVExporter renders an Agenda into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the agenda.
func (e *CSVExporter) Render(agenda Agenda) ([]byte, error) {
	if len(agenda.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(agenda.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range agenda.Rows {
		record := make([]string, len(agenda.Columns))
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
