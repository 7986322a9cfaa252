package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART:20250115T090000\r\n" +
	"DTEND:20250115T100000\r\n" +
	"SUMMARY:Mathematics\r\n" +
	"LOCATION:Room 12\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICSSingleEvent(t *testing.T) {
	events, diag := ParseICS(sampleICS)
	require.Len(t, events, 1)
	assert.Zero(t, diag.DroppedEvents)

	ev := events[0]
	assert.Equal(t, "Mathematics", ev.Summary)
	assert.Equal(t, "Room 12", ev.Location)
	assert.True(t, ev.Start.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local)))
	assert.True(t, ev.End.Equal(time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local)))
}

func TestParseICSLineUnfolding(t *testing.T) {
	folded := "BEGIN:VEVENT\r\n" +
		"DTSTART:20250115T090000\r\n" +
		"SUMMARY:Advanced Mathemat\r\n" +
		" ics with Mr Smith\r\n" +
		"END:VEVENT\r\n"
	plain := "BEGIN:VEVENT\r\n" +
		"DTSTART:20250115T090000\r\n" +
		"SUMMARY:Advanced Mathematics with Mr Smith\r\n" +
		"END:VEVENT\r\n"

	foldedEvents, _ := ParseICS(folded)
	plainEvents, _ := ParseICS(plain)
	require.Len(t, foldedEvents, 1)
	require.Len(t, plainEvents, 1)
	assert.Equal(t, plainEvents[0].Summary, foldedEvents[0].Summary)

	// Tab continuation works the same way.
	tabbed := "BEGIN:VEVENT\nDTSTART:20250115T090000\nSUMMARY:Half\n\tDay\nEND:VEVENT\n"
	tabbedEvents, _ := ParseICS(tabbed)
	require.Len(t, tabbedEvents, 1)
	assert.Equal(t, "HalfDay", tabbedEvents[0].Summary)
}

func TestParseICSAcceptance(t *testing.T) {
	// Missing SUMMARY: dropped. Missing DTEND: accepted, open-ended.
	input := "BEGIN:VEVENT\n" +
		"DTSTART:20250115T090000\n" +
		"DTEND:20250115T100000\n" +
		"END:VEVENT\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:20250115T110000\n" +
		"SUMMARY:Science\n" +
		"END:VEVENT\n"

	events, diag := ParseICS(input)
	require.Len(t, events, 1)
	assert.Equal(t, "Science", events[0].Summary)
	assert.False(t, events[0].HasEnd())
	assert.Equal(t, 1, diag.DroppedEvents)
}

func TestParseICSMissingStartDropped(t *testing.T) {
	input := "BEGIN:VEVENT\nSUMMARY:Orphan\nEND:VEVENT\n"
	events, diag := ParseICS(input)
	assert.Empty(t, events)
	assert.Equal(t, 1, diag.DroppedEvents)
}

func TestParseICSUnescaping(t *testing.T) {
	input := "BEGIN:VEVENT\n" +
		"DTSTART:20250115T090000\n" +
		`SUMMARY:Design\, Tech\nWorkshop \\lab` + "\n" +
		"END:VEVENT\n"

	events, _ := ParseICS(input)
	require.Len(t, events, 1)
	assert.Equal(t, `Design, Tech Workshop \lab`, events[0].Summary)
}

func TestParseICSTZIDParameter(t *testing.T) {
	input := "BEGIN:VEVENT\n" +
		"DTSTART;TZID=Australia/Sydney:20250115T090000\n" +
		"SUMMARY:Maths\n" +
		"END:VEVENT\n"

	events, diag := ParseICS(input)
	require.Len(t, events, 1)
	assert.Equal(t, 1, diag.TZIDDetected)
	assert.True(t, events[0].Start.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local)))
}

func TestParseICSBadTimeCounted(t *testing.T) {
	input := "BEGIN:VEVENT\n" +
		"DTSTART:garbage\n" +
		"SUMMARY:Broken\n" +
		"END:VEVENT\n"

	events, diag := ParseICS(input)
	assert.Empty(t, events)
	assert.Equal(t, 1, diag.BadTimes)
	assert.Equal(t, 1, diag.DroppedEvents)
}

func TestParseICSEmptyResultIsNotAnError(t *testing.T) {
	events, diag := ParseICS("BEGIN:VCALENDAR\nEND:VCALENDAR\n")
	assert.Empty(t, events)
	assert.Zero(t, diag.DroppedEvents)
}
