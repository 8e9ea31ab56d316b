package utils

import (
	"time"
)

// LocaleTimestampLayout renders times the way en-US Date.toLocaleString does ("1/15/2024, 10:30:00 AM").
const LocaleTimestampLayout = "1/2/2006, 3:04:05 PM"

// LoadLocation resolves an IANA zone name, falling back to UTC when it is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TimeNowIn returns the current time in the given location.
func TimeNowIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FormatLocaleTimestamp formats t with LocaleTimestampLayout.
func FormatLocaleTimestamp(t time.Time) string {
	return t.Format(LocaleTimestampLayout)
}
