package text

import (
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\v]*\n\s*`)
	lineBreak      = regexp.MustCompile(`[ \t\v]*\n[ \t\v]*`)
	horizontal     = regexp.MustCompile(`[ \t\v\x{00A0}\x{202F}\x{2007}]+`)
)

// Normalize cleans text pulled out of PDF content streams. It keeps line and
// paragraph structure, collapses runs of horizontal whitespace and drops
// control characters. Thousands separators become plain spaces, which the
// number parser ignores.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// page breaks
	text = strings.ReplaceAll(text, "\f", "\n\n")

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}

		if r < 0x20 || r == 0x7f || r == '\uFFFD' {
			return -1
		}

		return r
	}, text)

	text = horizontal.ReplaceAllString(text, " ")

	text = paragraphBreak.ReplaceAllString(text, "\n\n")
	text = lineBreak.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
