package sqlite

import (
	"fmt"
	"time"
)

// timeFormat is a fixed-width UTC timestamp layout, so stored timestamps
// compare correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// now returns the current time in UTC.
func now() time.Time {
	return time.Now().UTC()
}

// formatTime formats t for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

// parseTime parses a stored timestamp. Empty values yield the zero time.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseTime(value, fieldName string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
