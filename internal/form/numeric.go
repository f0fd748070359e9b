package form

import (
	"math"
	"strconv"
	"strings"
)

// Numeric coerces a form value to a number. Empty, non-numeric and
// non-finite input all count as 0.
func Numeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatNumber renders a quantity in its shortest exact decimal form
func FormatNumber(f float64) string {
	if f == 0 {
		return "0" // no "-0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
