package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex accepts integers, decimals and scientific notation.
// Matches the format accepted for numeric columns on import.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// IsNumeric reports whether s is a numeric string.
//
// Edge cases:
//   - "" and whitespace-only strings are not numeric
//   - surrounding whitespace is ignored (" 42 " is numeric)
//   - a leading sign is allowed ("+1", "-0.5")
//   - ".5", "5." and "1e3" are numeric
//   - "Infinity", "NaN", "0x1F" and "1,000" are not
//   - values that overflow float64 ("1e400") are not
func IsNumeric(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// ParseNumber returns the float64 value of a numeric string.
// The second result is false when [IsNumeric] would report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
