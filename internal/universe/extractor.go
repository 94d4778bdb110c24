package universe

import (
	"fmt"
	"sort"

	apperrors "jpxcli/internal/errors"
	"jpxcli/internal/schema"
	"jpxcli/pkg/contracts/domain"
)

// Extract reads the instrument records below headerRow. Rows whose code
// cell does not normalize are dropped, later duplicates of a code are
// dropped, and the result is sorted ascending by code. Fields absent from
// mapping stay empty.
func Extract(grid domain.RawGrid, headerRow int, mapping domain.HeaderMapping) ([]domain.InstrumentRecord, error) {
	if headerRow < 0 || headerRow >= len(grid) {
		return nil, apperrors.NewAppError(apperrors.ErrTypeUniverse,
			fmt.Sprintf("header row %d outside grid of %d rows", headerRow, len(grid)), nil)
	}
	codeCol, ok := mapping[domain.FieldCode]
	if !ok {
		return nil, &apperrors.MissingColumnsError{Missing: []string{domain.FieldCode}}
	}

	seen := make(map[string]bool)
	records := make([]domain.InstrumentRecord, 0, len(grid)-headerRow-1)
	for _, row := range grid[headerRow+1:] {
		code, ok := NormalizeCode(row.Cell(codeCol.Index))
		if !ok || seen[code] {
			continue
		}
		seen[code] = true

		rec := domain.InstrumentRecord{Code: code}
		for key, ref := range mapping {
			if key == domain.FieldCode {
				continue
			}
			rec.SetField(key, schema.CellText(row.Cell(ref.Index)))
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Code < records[j].Code
	})
	return records, nil
}
