package metrics

import (
	"strings"
	"time"
)

// dateFormats are the accepted work-history date layouts, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006-01",
	"01/2006",
	"01/02/2006",
	"2006",
}

// parseDate parses a work-history date string. Empty strings and "present"
// return the zero time with ok=false; callers treat that as "current".
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "present") {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// monthsBetween returns the number of whole months from start to end,
// floored at zero.
func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
