package util

import (
	"strconv"
	"time"
)

// Timestamps above this are read as unix milliseconds rather than seconds.
// The cutoff sits in 2286 for seconds and 2001 for milliseconds, so every
// plausible query value lands on the right side.
const millisCutoff = 1_000_000_000_000

// ParseTime tries RFC3339, RFC3339Nano, then a unix epoch in seconds or
// milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts >= millisCutoff {
			return time.UnixMilli(ts), true
		}
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}
