package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Every relative path is anchored on BaseDir, never the working directory.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string

	// Well-known files
	TickerListCSV string
	WorkbookFile  string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the directory tree under baseDir:
//
//	base/
//	  ├── data/
//	  │   ├── ticker_list.csv
//	  │   ├── prices.xlsx    (workbook destination)
//	  │   └── reports/       (failure reports)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		BaseDir:       baseDir,
		DataDir:       dataDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       filepath.Join(baseDir, "logs"),
		TickerListCSV: filepath.Join(dataDir, "ticker_list.csv"),
		WorkbookFile:  filepath.Join(dataDir, "prices.xlsx"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Resolve anchors a relative path on BaseDir.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// ResolveOr resolves path, falling back to def when path is empty.
func (p *Paths) ResolveOr(path, def string) string {
	if path == "" {
		return def
	}
	return p.Resolve(path)
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetDataPath returns the full path for a data file
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
