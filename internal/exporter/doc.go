// Package exporter writes the CSV artifacts of a run.
//
// CSVWriter is the shared writer: headers, UTF-8 BOM for spreadsheet tools,
// and relative paths resolved against the reports directory.
//
// TickerListExporter writes the instrument universe as ticker_list.csv, the
// handoff between the tickers and ingest commands. FailuresExporter writes
// the per-instrument failures of an ingest run.
//
// Example usage:
//
//	paths := config.NewPaths(baseDir)
//	tickers := exporter.NewTickerListExporter(paths)
//	err := tickers.Export(paths.TickerListCSV, domain.InstrumentFields, records)
package exporter
