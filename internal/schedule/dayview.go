package schedule

import (
	"sort"
	"time"

	"schoolcal/internal/model"
)

// DayEvents returns the template events falling on the given weekday,
// ordered by time of day. The template is matched by weekday only, so the
// events keep their original captured-week dates.
func DayEvents(events []model.CalendarEvent, day time.Weekday) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, ev := range events {
		if ev.Start.IsZero() || ev.Start.Weekday() != day {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return clockNanos(out[i].Start) < clockNanos(out[j].Start)
	})
	return out
}

// WithEndOfDay appends an open-ended sentinel event after the day's last
// lesson so the resolver can count down to the end of school. The sentinel
// starts at the last event's end (or start, when open-ended) and has no
// end of its own, which keeps it out of the in-progress check.
func WithEndOfDay(dayEvents []model.CalendarEvent, label string) []model.CalendarEvent {
	if len(dayEvents) == 0 {
		return dayEvents
	}

	last := dayEvents[len(dayEvents)-1]
	at := last.End
	if !last.HasEnd() {
		at = last.Start
	}

	return append(dayEvents, model.CalendarEvent{
		Start:   at,
		Summary: label,
	})
}

// DayView is the display-ready list for one weekday: sorted events with
// breaks synthesized into the gaps and the end-of-day sentinel appended.
func DayView(events []model.CalendarEvent, day time.Weekday, threshold time.Duration, eodLabel string) []model.CalendarEvent {
	view := InsertBreaks(DayEvents(events, day), threshold)
	if eodLabel != "" {
		view = WithEndOfDay(view, eodLabel)
	}
	return view
}

// Template expands the stored week into the resolver's input: every school
// day's view (breaks and sentinels included) concatenated into one flat
// list. Breaks are derived here on every call and never persisted.
func Template(week model.WeekData, threshold time.Duration, eodLabel string) []model.CalendarEvent {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	var out []model.CalendarEvent
	for _, day := range days {
		out = append(out, DayView(week.Events, day, threshold, eodLabel)...)
	}
	return out
}
