package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"jpxcli/internal/config"
)

const defaultSheet = "Sheet1"

// WorkbookDestination publishes to a worksheet of a local xlsx file. Each
// operation opens, edits and saves the file.
type WorkbookDestination struct {
	path string
}

// NewWorkbookDestination creates a destination for the file at cfg.Path
func NewWorkbookDestination(cfg config.WorkbookConfig) *WorkbookDestination {
	return &WorkbookDestination{path: cfg.Path}
}

// Name implements Destination.
func (w *WorkbookDestination) Name() string { return "workbook" }

// Exists implements Destination.
func (w *WorkbookDestination) Exists(_ context.Context, surface string) (bool, error) {
	if !config.FileExists(w.path) {
		return false, nil
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return false, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(surface)
	if err != nil {
		return false, err
	}
	return idx >= 0, nil
}

// Create implements Destination. A new file replaces its default sheet with
// surface; the used range is set to rows x cols.
func (w *WorkbookDestination) Create(_ context.Context, surface string, rows, cols int) error {
	f, fresh, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := f.NewSheet(surface)
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", surface, err)
	}
	if fresh && surface != defaultSheet {
		f.SetActiveSheet(idx)
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	last, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return err
	}
	if err := f.SetSheetDimension(surface, "A1:"+last); err != nil {
		return fmt.Errorf("failed to size sheet %q: %w", surface, err)
	}
	return w.save(f)
}

// Clear implements Destination by blanking every populated cell.
func (w *WorkbookDestination) Clear(_ context.Context, surface string) error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(surface)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", surface, err)
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		blank := make([]interface{}, len(row))
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(surface, cell, &blank); err != nil {
			return fmt.Errorf("failed to clear row %d: %w", i+1, err)
		}
	}
	return w.save(f)
}

// WriteRows implements Destination. Values are written as text.
func (w *WorkbookDestination) WriteRows(_ context.Context, surface string, startRow int, rows [][]string) error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(surface, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", startRow+i, err)
		}
	}
	return w.save(f)
}

func (w *WorkbookDestination) open() (*excelize.File, bool, error) {
	if !config.FileExists(w.path) {
		return excelize.NewFile(), true, nil
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, false, nil
}

func (w *WorkbookDestination) save(f *excelize.File) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
