package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeOffsetNormalizedToUTC(t *testing.T) {
	got, ok := ParseTime("2024-10-10T12:10:10+02:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	if want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC); !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeNaiveLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-05 13:30:00": time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC),
		"2024-03-05T13:30:00": time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC),
		"2024-03-05 13:30":    time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC),
		" 2024-03-05 ":        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseTime(in)
		if !ok {
			t.Fatalf("%q: expected ok", in)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}

	got, ok = ParseTime(strconv.FormatInt(ts*1000, 10))
	if !ok || got.Unix() != ts {
		t.Fatalf("unexpected unix millis %v", got)
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2024-13-40", "-5"} {
		if _, ok := ParseTime(in); ok {
			t.Fatalf("%q: expected failure", in)
		}
	}
}

func TestParseFirst(t *testing.T) {
	got, ok := ParseFirst([]string{"TBD", "2024-03-05"})
	if !ok || got.Day() != 5 {
		t.Fatalf("expected fallback to second candidate, got %v", got)
	}
	if _, ok := ParseFirst(nil); ok {
		t.Fatalf("expected failure")
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	from, to := Window(now, 14, 60)
	if from.Format("2006-01-02") != "2024-03-17" || to.Format("2006-01-02") != "2024-05-30" {
		t.Fatalf("unexpected window %v - %v", from, to)
	}
}
