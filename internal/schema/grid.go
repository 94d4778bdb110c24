package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

// Format identifies the container of a downloaded listing.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte("\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1")
	utf8BOM  = []byte("\xEF\xBB\xBF")
)

// DetectFormat sniffs the container format from the leading bytes.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	default:
		return FormatCSV
	}
}

// DecodeGrid reads a listing into a RawGrid without assuming any schema.
// sheet selects a worksheet by name; empty means the first sheet. Empty
// cells decode to nil.
func DecodeGrid(data []byte, sheet string) (domain.RawGrid, error) {
	if len(data) == 0 {
		return nil, apperrors.NewParsingError("listing is empty", nil)
	}
	switch DetectFormat(data) {
	case FormatXLSX:
		return decodeXLSX(data, sheet)
	case FormatXLS:
		return decodeXLS(data, sheet)
	default:
		return decodeCSV(data)
	}
}

func decodeXLSX(data []byte, sheet string) (domain.RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open xlsx listing", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("xlsx listing has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	grid := make(domain.RawGrid, len(rows))
	for i, cells := range rows {
		grid[i] = stringRow(cells)
	}
	return grid, nil
}

func decodeXLS(data []byte, sheet string) (grid domain.RawGrid, err error) {
	// the BIFF reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, apperrors.NewParsingError(fmt.Sprintf("corrupt xls listing: %v", r), nil)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open xls listing", err)
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		candidate := wb.GetSheet(i)
		if candidate == nil {
			continue
		}
		if sheet == "" || candidate.Name == sheet {
			ws = candidate
			break
		}
	}
	if ws == nil {
		if sheet == "" {
			return nil, apperrors.NewParsingError("xls listing has no sheets", nil)
		}
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q not found in xls listing", sheet), nil)
	}

	grid = make(domain.RawGrid, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		grid = append(grid, stringRow(cells))
	}
	return grid, nil
}

// decodeCSV accepts UTF-8 (with or without BOM) and Shift_JIS text.
func decodeCSV(data []byte) (domain.RawGrid, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		r = bytes.NewReader(data[len(utf8BOM):])
	case utf8.Valid(data):
		r = bytes.NewReader(data)
	default:
		r = transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse csv listing", err)
	}

	grid := make(domain.RawGrid, len(records))
	for i, rec := range records {
		grid[i] = stringRow(rec)
	}
	return grid, nil
}

func stringRow(cells []string) domain.Row {
	row := make(domain.Row, len(cells))
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		row[i] = c
	}
	return row
}
