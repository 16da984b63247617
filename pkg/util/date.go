package util

import (
	"strconv"
	"strings"
	"time"
)

// Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// unix values above this are taken as milliseconds
const unixMillisCutoff = 1e11

// ParseTime tries the known layouts, then unix seconds or milliseconds.
// Returns (t, true) in UTC if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts > unixMillisCutoff {
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseFirst returns the first candidate that parses.
func ParseFirst(candidates []string) (time.Time, bool) {
	for _, c := range candidates {
		if t, ok := ParseTime(c); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Window returns [now - back days, now + ahead days].
func Window(now time.Time, back, ahead int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -back), now.AddDate(0, 0, ahead)
}
