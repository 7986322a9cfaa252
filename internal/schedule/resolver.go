package schedule

import (
	"sort"
	"time"

	"schoolcal/internal/model"
)

// The resolver treats the captured week as an indefinitely repeating
// weekly template: events are matched purely by weekday and time of day,
// never by their original calendar date. The date arithmetic below only
// decides which absolute instant the countdown targets.

// occurrence is a template event pinned to a concrete date.
type occurrence struct {
	event model.CalendarEvent
	start time.Time
	end   time.Time // zero when the event is open-ended
}

// Resolve determines what the countdown should show at `now`, given the
// template's flat event list (typically including synthesized breaks and
// end-of-day markers, which compete on equal footing with real events).
//
// Three states, checked in order:
//
//  1. An event with a defined end is running: the countdown targets its
//     end, and the displayed event is the one after it (or itself when it
//     is the day's last).
//  2. A later event starts today: target and display are that event.
//  3. Otherwise the first event of the next school day is used, skipping
//     the weekend (Friday→Monday). A next school day with no template
//     events yields nil — a valid "no next event", not an error.
func Resolve(now time.Time, events []model.CalendarEvent) *model.NextEvent {
	today := occurrencesOn(now, events)

	for i, occ := range today {
		if occ.end.IsZero() {
			// Open-ended events can be targets but never "in progress".
			continue
		}
		if now.Before(occ.start) || !now.Before(occ.end) {
			continue
		}
		display := occ.event
		if i+1 < len(today) {
			display = today[i+1].event
		}
		return &model.NextEvent{Event: display, Target: occ.end}
	}

	for _, occ := range today {
		if occ.start.After(now) {
			return &model.NextEvent{Event: occ.event, Target: occ.start}
		}
	}

	nextDay := now.AddDate(0, 0, nextSchoolDayOffset(now.Weekday()))
	upcoming := occurrencesOn(nextDay, events)
	if len(upcoming) == 0 {
		return nil
	}
	return &model.NextEvent{Event: upcoming[0].event, Target: upcoming[0].start}
}

// occurrencesOn selects the template events whose weekday matches `day`
// and pins them to day's date, ordered strictly by time of day.
func occurrencesOn(day time.Time, events []model.CalendarEvent) []occurrence {
	var out []occurrence
	for _, ev := range events {
		if ev.Start.IsZero() || ev.Start.Weekday() != day.Weekday() {
			continue
		}
		occ := occurrence{
			event: ev,
			start: atClockOf(day, ev.Start),
		}
		if ev.HasEnd() {
			occ.end = atClockOf(day, ev.End)
		}
		out = append(out, occ)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return clockNanos(out[i].event.Start) < clockNanos(out[j].event.Start)
	})
	return out
}

// atClockOf combines day's calendar date with src's time of day.
func atClockOf(day, src time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		src.Hour(), src.Minute(), src.Second(), src.Nanosecond(), day.Location())
}

// clockNanos is the time-of-day component as nanoseconds since midnight.
func clockNanos(t time.Time) int64 {
	return int64(t.Hour())*int64(time.Hour) +
		int64(t.Minute())*int64(time.Minute) +
		int64(t.Second())*int64(time.Second) +
		int64(t.Nanosecond())
}

// nextSchoolDayOffset returns how many days ahead the next school day is.
// Friday jumps over the weekend; Saturday and Sunday land on Monday.
func nextSchoolDayOffset(wd time.Weekday) int {
	switch wd {
	case time.Friday:
		return 3
	case time.Saturday:
		return 2
	default:
		return 1
	}
}
