package locale

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// day and month accept one or two digits
var dateLayouts = []string{
	"2.1.2006.",
	"2.1.2006",
	"2.1.06.",
	"2.1.06",
	"2-1-2006",
	"2006-1-2",
}

// ParseDate converts a Croatian formatted date into yyyy-mm-dd.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if s == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)

		if err != nil {
			continue
		}

		return t.Format(DateLayout), true
	}

	return "", false
}
