package ics

import (
	"strings"
	"time"
)

// School exports are inconsistent about seconds and separators, so the
// fallback tier tries a small ladder of layouts before giving up.
var fallbackLayouts = []string{
	"20060102T1504",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses an ICS date-time value into a time.Time.
//
// The raw value may carry a leading parameter segment separated by ';'
// (e.g. "TZID=Australia/Sydney;20250203T090000"); only the final segment
// is the date value. A TZID parameter is detected and reported via the
// second return, but the value is still interpreted in local time —
// school calendars are single-timezone and the countdown math assumes the
// viewer's clock.
//
// Shapes:
//   - trailing 'Z': numeric fields are UTC
//   - length 8:  date-only (YYYYMMDD), local midnight
//   - length 15+: date-time (YYYYMMDDTHHMMSS)
//   - anything else: best-effort fallback parsing of the raw value
//
// Malformed input never produces an error; it yields the zero time, which
// callers must filter before sorting or comparing.
func ParseDateTime(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	tzid := false

	if i := strings.LastIndex(v, ";"); i >= 0 {
		if strings.Contains(strings.ToUpper(v[:i]), "TZID=") {
			tzid = true
		}
		v = v[i+1:]
	}

	loc := time.Local
	if strings.HasSuffix(v, "Z") {
		loc = time.UTC
		v = strings.TrimSuffix(v, "Z")
	}

	switch {
	case len(v) == 8:
		if t, err := time.ParseInLocation("20060102", v, loc); err == nil {
			return t, tzid
		}
	case len(v) >= 15:
		// Seconds are always present at this length; anything after the
		// seconds field (fractional seconds etc.) is ignored.
		if t, err := time.ParseInLocation("20060102T150405", v[:15], loc); err == nil {
			return t, tzid
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, tzid
		}
	}

	return time.Time{}, tzid
}
