package schedule

import (
	"errors"
	"sort"
	"time"

	"schoolcal/internal/model"
)

// ErrNoSchoolWeek is returned when no Monday–Friday window contains a
// single usable event. This is the one unrecoverable import condition and
// must reach the user as "no valid schedule found in file".
var ErrNoSchoolWeek = errors.New("no valid schedule found")

// MondayOf returns local midnight of the Monday of t's calendar week.
// Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	days := wd - 1
	if wd == 0 {
		days = 6
	}
	d := t.AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// endOfFriday returns 23:59:59.999 local time on Monday+4.
func endOfFriday(monday time.Time) time.Time {
	f := monday.AddDate(0, 0, 4)
	return time.Date(f.Year(), f.Month(), f.Day(), 23, 59, 59, 999e6, f.Location())
}

// GroupIntoWeeks buckets a flat event list into Monday–Friday windows.
//
// Events with a zero start (unparseable datetimes) are skipped. Each
// bucket is re-filtered against its own window, which is what keeps
// weekend events out: a Saturday start buckets to its week's Monday but
// falls outside [Monday, Friday 23:59:59.999]. Weeks left with no
// qualifying events are dropped. Output is sorted ascending by Monday.
func GroupIntoWeeks(events []model.CalendarEvent) []model.WeekData {
	buckets := make(map[string][]model.CalendarEvent)
	mondays := make(map[string]time.Time)

	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		monday := MondayOf(ev.Start)
		key := monday.Format("2006-01-02")
		buckets[key] = append(buckets[key], ev)
		mondays[key] = monday
	}

	weeks := make([]model.WeekData, 0, len(buckets))
	for key, bucket := range buckets {
		monday := mondays[key]
		friday := endOfFriday(monday)

		kept := make([]model.CalendarEvent, 0, len(bucket))
		for _, ev := range bucket {
			if ev.Start.Before(monday) || ev.Start.After(friday) {
				continue
			}
			kept = append(kept, ev)
		}
		if len(kept) == 0 {
			continue
		}

		weeks = append(weeks, model.WeekData{
			Monday: monday,
			Friday: friday,
			Events: kept,
		})
	}

	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Monday.Before(weeks[j].Monday)
	})
	return weeks
}

// SelectBestWeek picks the most populated week as the repeating template.
// Ties keep the earliest week. An empty candidate list (or one with no
// events, which GroupIntoWeeks never produces) yields ErrNoSchoolWeek.
func SelectBestWeek(weeks []model.WeekData) (model.WeekData, error) {
	var best model.WeekData
	found := false

	for _, w := range weeks {
		if len(w.Events) == 0 {
			continue
		}
		if !found || len(w.Events) > len(best.Events) {
			best = w
			found = true
		}
	}

	if !found {
		return model.WeekData{}, ErrNoSchoolWeek
	}
	return best, nil
}
