package exporter

import (
	"strconv"
)

// FormatFloat renders a value with the shortest representation that
// round-trips, so 1234.5 stays "1234.5" and 1200 becomes "1200".
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt formats an int value for CSV output
func FormatInt(i int) string {
	return strconv.Itoa(i)
}
