package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

const ideographicSpace = "　"

// Normalize returns the label form of a cell: CellText with full-width
// characters folded to their narrow forms.
func Normalize(cell any) string {
	return strings.TrimSpace(width.Fold.String(CellText(cell)))
}

// CellText stringifies a cell, turns ideographic spaces into ASCII spaces
// and trims the result. nil becomes "".
func CellText(cell any) string {
	var s string
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case time.Time:
		s = v.Format("2006-01-02")
	default:
		s = fmt.Sprint(v)
	}
	s = strings.ReplaceAll(s, ideographicSpace, " ")
	return strings.TrimSpace(s)
}

// matchForm is the comparison form of a label.
func matchForm(cell any) string {
	return strings.ToLower(Normalize(cell))
}

// NormalizeRow normalizes every cell of a row.
func NormalizeRow(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = Normalize(cell)
	}
	return out
}
