package exporter

import (
	"fmt"
	"time"

	"jpxcli/internal/config"
	"jpxcli/pkg/contracts/domain"
)

// FailuresExporter writes the instruments an ingest run could not fetch
type FailuresExporter struct {
	csvWriter *CSVWriter
}

// NewFailuresExporter creates a new failures report exporter
func NewFailuresExporter(paths *config.Paths) *FailuresExporter {
	return &FailuresExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// FileName returns the report name for a run started at t.
func (f *FailuresExporter) FileName(t time.Time) string {
	return fmt.Sprintf("ingest_failures_%s.csv", t.Format("20060102_150405"))
}

// Export writes Code,Reason rows in run order.
func (f *FailuresExporter) Export(filePath string, failures []domain.FetchFailure) error {
	rows := make([][]string, len(failures))
	for i, fail := range failures {
		rows[i] = []string{fail.Code, fail.Reason}
	}
	return f.csvWriter.WriteSimpleCSV(filePath, []string{"Code", "Reason"}, rows)
}
