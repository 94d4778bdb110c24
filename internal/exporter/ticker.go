package exporter

import (
	"fmt"

	"jpxcli/internal/config"
	"jpxcli/pkg/contracts/domain"
)

// TickerListExporter writes the instrument universe artifact
type TickerListExporter struct {
	csvWriter *CSVWriter
}

// NewTickerListExporter creates a new ticker list exporter
func NewTickerListExporter(paths *config.Paths) *TickerListExporter {
	return &TickerListExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// Export writes one row per record with the given canonical fields as
// columns. fields must start with Code.
func (t *TickerListExporter) Export(filePath string, fields []string, records []domain.InstrumentRecord) error {
	if len(fields) == 0 || fields[0] != domain.FieldCode {
		return fmt.Errorf("ticker list columns must start with %s, got %v", domain.FieldCode, fields)
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = r.Field(f)
		}
		rows[i] = row
	}

	if err := t.csvWriter.WriteSimpleCSV(filePath, fields, rows); err != nil {
		return fmt.Errorf("failed to write ticker list: %w", err)
	}
	return nil
}

// Read returns the raw header and rows of a ticker list.
func (t *TickerListExporter) Read(filePath string) ([]string, [][]string, error) {
	records, err := t.csvWriter.ReadCSV(filePath)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("ticker list %s is empty", filePath)
	}
	return records[0], records[1:], nil
}
