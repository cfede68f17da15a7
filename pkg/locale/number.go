package locale

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseNumber parses a number written in Croatian notation ("1.234,56").
// When both separators occur, '.' groups thousands and ',' marks the decimal.
// A lone ',' is the decimal separator.
func ParseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")

	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	if s == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(s, 64)

	if err != nil {
		return 0, false
	}

	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}

	return val, true
}
