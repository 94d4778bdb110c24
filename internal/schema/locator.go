package schema

import (
	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

// Locate returns the index of the first row that carries a label for every
// key of aliases. Rows are scanned from the top, at most maxRows of them
// (maxRows <= 0 scans the whole grid). An exact pass runs over the scanned
// range first; substring containment is tried only if no row matches exactly.
func Locate(grid domain.RawGrid, aliases AliasTable, maxRows int) (int, error) {
	limit := len(grid)
	if maxRows > 0 && maxRows < limit {
		limit = maxRows
	}

	c := aliases.compile()
	rows := make([][]string, limit)
	for i := 0; i < limit; i++ {
		rows[i] = matchRow(grid[i])
	}

	for _, match := range []func(string, string) bool{c.exact, c.contains} {
		for i, labels := range rows {
			if rowSatisfies(c, labels, match) {
				return i, nil
			}
		}
	}

	return -1, &apperrors.HeaderNotFoundError{
		Searched:    aliases.searched(),
		RowsScanned: limit,
		Found:       leadingLabels(grid[:limit], foundRows),
	}
}

// foundRows bounds the rows quoted by HeaderNotFoundError.
const foundRows = 3

// leadingLabels returns the non-blank display labels of the first n rows
// that have any.
func leadingLabels(grid domain.RawGrid, n int) [][]string {
	var out [][]string
	for _, row := range grid {
		if len(out) == n {
			break
		}
		var labels []string
		for _, label := range NormalizeRow(row) {
			if label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) > 0 {
			out = append(out, labels)
		}
	}
	return out
}

func matchRow(row domain.Row) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = matchForm(cell)
	}
	return out
}

func rowSatisfies(c compiled, labels []string, match func(key, label string) bool) bool {
	for _, key := range c.keys {
		found := false
		for _, label := range labels {
			if match(key, label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
