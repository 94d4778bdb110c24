package universe

import (
	"fmt"
	"strings"

	"jpxcli/internal/exporter"
	"jpxcli/pkg/contracts/domain"
)

// LoadCodes reads the instrument codes of a ticker list in file order.
// Codes a spreadsheet tool stripped of leading zeros are re-padded, empty or
// non-numeric codes are skipped and duplicates keep their first position.
func LoadCodes(list *exporter.TickerListExporter, path string) ([]string, error) {
	header, rows, err := list.Read(path)
	if err != nil {
		return nil, err
	}

	col := -1
	for i, label := range header {
		if strings.EqualFold(strings.TrimSpace(label), domain.FieldCode) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("ticker list %s has no %s column (header %v)", path, domain.FieldCode, header)
	}

	seen := make(map[string]bool, len(rows))
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		code, ok := NormalizeCode(row[col])
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}
