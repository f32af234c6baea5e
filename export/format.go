package export

import "time"

// clockTime renders a timestamp as a UTC time-of-day string for human
// reading. Exports are not meant to round-trip instants; the date
// column carries the day.
func clockTime(t time.Time) string {
	return t.UTC().Format("15:04")
}
