package schema

import (
	"sort"

	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

// MapColumns resolves every key of aliases to exactly one column of the
// header row.
//
// A key takes the column equal to one of its aliases; two such columns are an
// AmbiguousColumnError. Keys without an exact hit fall back to substring containment over the columns no other key
// claimed exactly; more than one candidate is an AmbiguousColumnError, as is
// two keys resolving to the same column. Every key left unmapped is reported
// in a single MissingColumnsError.
func MapColumns(header domain.Row, aliases AliasTable) (domain.HeaderMapping, error) {
	c := aliases.compile()
	labels := matchRow(header)
	display := NormalizeRow(header)

	assigned := make(map[string]int, len(c.keys))
	claimed := make(map[int]string)

	var fallback []string
	for _, key := range c.keys {
		var hits []int
		for i, label := range labels {
			if c.exact(key, label) {
				hits = append(hits, i)
			}
		}
		if len(hits) == 0 {
			fallback = append(fallback, key)
			continue
		}
		if len(hits) > 1 {
			return nil, ambiguity([]string{key}, hits, display)
		}
		col := hits[0]
		if other, ok := claimed[col]; ok {
			return nil, ambiguity([]string{other, key}, []int{col}, display)
		}
		assigned[key] = col
		claimed[col] = key
	}

	exactClaimed := make(map[int]bool, len(claimed))
	for col := range claimed {
		exactClaimed[col] = true
	}

	var missing []string
	for _, key := range fallback {
		var candidates []int
		for i, label := range labels {
			if exactClaimed[i] {
				continue
			}
			if c.contains(key, label) {
				candidates = append(candidates, i)
			}
		}
		switch len(candidates) {
		case 0:
			missing = append(missing, key)
		case 1:
			col := candidates[0]
			if other, ok := claimed[col]; ok {
				return nil, ambiguity([]string{other, key}, []int{col}, display)
			}
			assigned[key] = col
			claimed[col] = key
		default:
			return nil, ambiguity([]string{key}, candidates, display)
		}
	}

	if len(missing) > 0 {
		present := make([]string, 0, len(display))
		for _, label := range display {
			if label != "" {
				present = append(present, label)
			}
		}
		return nil, &apperrors.MissingColumnsError{Missing: missing, Present: present}
	}

	mapping := make(domain.HeaderMapping, len(assigned))
	for key, col := range assigned {
		mapping[key] = domain.ColumnRef{Label: display[col], Index: col}
	}
	return mapping, nil
}

func ambiguity(keys []string, cols []int, display []string) error {
	sort.Ints(cols)
	labels := make([]string, len(cols))
	for i, col := range cols {
		labels[i] = display[col]
	}
	return &apperrors.AmbiguousColumnError{Keys: keys, Columns: cols, Labels: labels}
}
