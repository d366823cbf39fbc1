package utils

import (
	"time"
)

// DateLayout is the wire format for start_date / end_date query parameters.
const DateLayout = "2006-01-02"

// ParseDuration safely parses a duration string like "60s", falling back to
// the given default.
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ParseDate parses an optional YYYY-MM-DD parameter. An empty string is not
// an error: it means the parameter was omitted and returns nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
