package ics

import (
	"strings"
	"time"

	appLog "schoolcal/internal/log"
	"schoolcal/internal/model"
)

// Diagnostics reports what the parser silently tolerated. Dropping bad
// records instead of failing matches how real school systems export ICS;
// the counters make the tolerance observable without console noise.
type Diagnostics struct {
	// DroppedEvents counts VEVENT blocks rejected for a missing start or
	// summary.
	DroppedEvents int
	// BadTimes counts DTSTART/DTEND values that failed to parse.
	BadTimes int
	// TZIDDetected counts values that carried a TZID parameter. TZIDs are
	// noted but not applied; see ParseDateTime.
	TZIDDetected int
}

// ParseICS parses an ICS text blob into a flat list of events.
//
// Only a restricted subset is understood: BEGIN/END:VEVENT blocks with
// DTSTART/DTEND/SUMMARY/LOCATION/DESCRIPTION, with RFC 5545 line folding
// honored. No recurrence expansion is performed — the application treats
// one captured week as a literal weekly template instead.
//
// The parser never returns an error. Malformed blocks are dropped and
// counted; an empty result for non-empty input is a valid outcome the
// caller must check.
func ParseICS(content string) ([]model.CalendarEvent, Diagnostics) {
	var diag Diagnostics

	lines := unfoldLines(content)

	events := make([]model.CalendarEvent, 0)
	var cur model.CalendarEvent
	inEvent := false
	hasStart := false

	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			cur = model.CalendarEvent{}
			inEvent = true
			hasStart = false

		case line == "END:VEVENT":
			if !inEvent {
				continue
			}
			inEvent = false
			if hasStart && cur.Summary != "" {
				events = append(events, cur)
			} else {
				diag.DroppedEvents++
			}

		case inEvent:
			key, value, ok := splitContentLine(line)
			if !ok {
				continue
			}
			name, params := splitKeyParams(key)

			switch {
			case name == "DTSTART":
				t, tzid := parseTimeValue(params, value)
				if tzid {
					diag.TZIDDetected++
				}
				if t.IsZero() {
					diag.BadTimes++
					continue
				}
				cur.Start = t
				hasStart = true
			case name == "DTEND":
				t, tzid := parseTimeValue(params, value)
				if tzid {
					diag.TZIDDetected++
				}
				if t.IsZero() {
					diag.BadTimes++
					continue
				}
				cur.End = t
			case name == "SUMMARY":
				cur.Summary = unescapeText(value)
			case name == "LOCATION":
				cur.Location = unescapeText(value)
			case name == "DESCRIPTION":
				cur.Description = unescapeText(value)
			}
		}
	}

	if diag.DroppedEvents > 0 || diag.BadTimes > 0 {
		appLog.Warn("ics parse tolerated bad records",
			"dropped_events", diag.DroppedEvents,
			"bad_times", diag.BadTimes,
			"accepted", len(events),
		)
	}

	return events, diag
}

// unfoldLines splits the input on CRLF or LF and applies RFC 5545 line
// unfolding: a line starting with a single space or tab continues the
// previous logical line, with the leading whitespace character stripped.
func unfoldLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(out) > 0 {
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}
	return out
}

// splitContentLine splits "KEY:VALUE" at the first colon. Lines without a
// colon are not content lines and are skipped.
func splitContentLine(line string) (key, value string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// splitKeyParams splits a property key like "DTSTART;TZID=X" into its name
// and the raw parameter segment (empty when there are no parameters).
func splitKeyParams(key string) (name, params string) {
	if i := strings.Index(key, ";"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}

// parseTimeValue hands the property's parameters and value to the
// normalizer in the same "params;value" shape ParseDateTime expects.
func parseTimeValue(params, value string) (time.Time, bool) {
	if params == "" {
		return ParseDateTime(value)
	}
	return ParseDateTime(params + ";" + value)
}

// unescapeText reverses ICS text escaping: "\n" becomes a space (summaries
// are single-line in this UI), "\," a comma and "\\" a backslash.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n', 'N':
			b.WriteByte(' ')
			i++
		case ',':
			b.WriteByte(',')
			i++
		case ';':
			b.WriteByte(';')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
