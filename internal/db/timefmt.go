package db

import "time"

// TimeLayout is the fixed-width UTC layout used for every timestamp column in
// SQLite, so that text comparison orders the same way as time comparison.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DateLayout is the calendar-day prefix of TimeLayout.
const DateLayout = "2006-01-02"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
