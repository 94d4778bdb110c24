package errors

import (
	"fmt"
	"sort"
	"strings"
)

// HeaderNotFoundError is returned when no scanned row carries every required
// header label.
type HeaderNotFoundError struct {
	// Searched maps each canonical key to the aliases that were tried.
	Searched    map[string][]string
	RowsScanned int
	// Found holds the normalized labels of the first non-empty scanned rows.
	Found [][]string
}

func (e *HeaderNotFoundError) Error() string {
	msg := fmt.Sprintf("header row not found in %d scanned rows; searched for %s",
		e.RowsScanned, formatAliases(e.Searched))
	if len(e.Found) == 0 {
		return msg
	}
	rows := make([]string, len(e.Found))
	for i, labels := range e.Found {
		rows[i] = "[" + strings.Join(labels, ", ") + "]"
	}
	return msg + "; first rows " + strings.Join(rows, " ")
}

func (e *HeaderNotFoundError) Fatal() bool          { return true }
func (e *HeaderNotFoundError) ErrorType() ErrorType { return ErrTypeSchema }

// MissingColumnsError lists every canonical key left unmapped.
type MissingColumnsError struct {
	Missing []string
	// Present holds the normalized labels of the header row.
	Present []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns [%s]; header has [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

func (e *MissingColumnsError) Fatal() bool          { return true }
func (e *MissingColumnsError) ErrorType() ErrorType { return ErrTypeSchema }

// AmbiguousColumnError reports a header that resolves to conflicting columns,
// either two keys on one column or one key with several substring hits.
type AmbiguousColumnError struct {
	Keys    []string
	Columns []int
	Labels  []string
}

func (e *AmbiguousColumnError) Error() string {
	cols := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		label := ""
		if i < len(e.Labels) {
			label = e.Labels[i]
		}
		cols[i] = fmt.Sprintf("%d:%q", c, label)
	}
	return fmt.Sprintf("ambiguous column mapping for [%s] over columns [%s]",
		strings.Join(e.Keys, ", "), strings.Join(cols, ", "))
}

func (e *AmbiguousColumnError) Fatal() bool          { return true }
func (e *AmbiguousColumnError) ErrorType() ErrorType { return ErrTypeSchema }

// InstrumentFetchError is a per-instrument failure. It never aborts a run.
type InstrumentFetchError struct {
	Code   string
	Reason string
	Cause  error
}

func (e *InstrumentFetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("instrument %s: %s: %v", e.Code, e.Reason, e.Cause)
	}
	return fmt.Sprintf("instrument %s: %s", e.Code, e.Reason)
}

func (e *InstrumentFetchError) Unwrap() error        { return e.Cause }
func (e *InstrumentFetchError) Fatal() bool          { return false }
func (e *InstrumentFetchError) ErrorType() ErrorType { return ErrTypeFetch }

// Detail returns the reason with the cause appended, for reports.
func (e *InstrumentFetchError) Detail() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

// EmptyUniverseError is returned when not a single instrument succeeded.
type EmptyUniverseError struct {
	Attempted int
}

func (e *EmptyUniverseError) Error() string {
	return fmt.Sprintf("no price data fetched for any of %d instruments", e.Attempted)
}

func (e *EmptyUniverseError) Fatal() bool          { return true }
func (e *EmptyUniverseError) ErrorType() ErrorType { return ErrTypeUniverse }

// PublishError wraps a destination failure. Fetched data is left untouched.
type PublishError struct {
	Destination string
	Op          string
	Cause       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed during %s: %v", e.Destination, e.Op, e.Cause)
}

func (e *PublishError) Unwrap() error        { return e.Cause }
func (e *PublishError) Fatal() bool          { return true }
func (e *PublishError) ErrorType() ErrorType { return ErrTypePublish }

func formatAliases(searched map[string][]string) string {
	keys := make([]string, 0, len(searched))
	for k := range searched {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, searched[k]))
	}
	return strings.Join(parts, " ")
}
