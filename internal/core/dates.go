package core

import "time"

// DateLayout is the calendar-date format used by fine and donation rows.
const DateLayout = "2006-01-02"

// ParseDate parses a ledger date string. Missing or malformed dates
// default to the Unix epoch so historical rows without a date always
// qualify for cutoff filters.
func ParseDate(s string) time.Time {
	if s == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// Some rows carry full timestamps.
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Unix(0, 0).UTC()
		}
	}
	return t
}

// FormatDate renders a time as a ledger date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
