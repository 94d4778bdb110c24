package universe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"jpxcli/internal/schema"
	"jpxcli/pkg/contracts/domain"
)

var maxCode = int(math.Pow10(domain.CodeWidth)) - 1

// NormalizeCode coerces a listing cell to a canonical code: an integer in
// [0, 9999] left padded with zeros to four characters. Integral floats such
// as 7.0 are accepted; text must be plain digits with an optional ".0" tail.
// ok is false for empty, non-numeric, negative, fractional or too-wide values.
func NormalizeCode(cell any) (string, bool) {
	var n float64
	switch v := cell.(type) {
	case nil:
		return "", false
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		s := schema.Normalize(v)
		if !isDecimalCode(s) {
			return "", false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		n = f
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n != math.Trunc(n) || n > float64(maxCode) {
		return "", false
	}
	return fmt.Sprintf("%0*d", domain.CodeWidth, int(n)), true
}

// isDecimalCode reports whether s is digits optionally followed by a dot and
// zeros. Signs, exponents and hex forms are rejected.
func isDecimalCode(s string) bool {
	intPart, frac, hasDot := strings.Cut(s, ".")
	if intPart == "" {
		return false
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return false
		}
	}
	return !hasDot || strings.Trim(frac, "0") == ""
}
