package prices

import (
	"context"
	"time"
)

// Series column names.
const (
	ColumnOpen   = "Open"
	ColumnHigh   = "High"
	ColumnLow    = "Low"
	ColumnClose  = "Close"
	ColumnVolume = "Volume"
)

// RequiredColumns must all be present in a Series.
var RequiredColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// Series is the raw daily history returned by a Source. Columns are aligned
// with Dates; a nil entry is a missing observation.
type Series struct {
	Dates   []time.Time
	Columns map[string][]*float64
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// Source returns the daily series for symbol between start and end, both
// inclusive calendar dates.
type Source interface {
	Daily(ctx context.Context, symbol string, start, end time.Time) (*Series, error)
}

// Window is the inclusive date range requested for every instrument.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowEndingAt returns the window of daysBack calendar days ending on the
// date of now in loc.
func WindowEndingAt(now time.Time, loc *time.Location, daysBack int) Window {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: end.AddDate(0, 0, -daysBack), End: end}
}
