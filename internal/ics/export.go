package ics

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"schoolcal/internal/model"
)

// ExportWeek serializes the template week back into an ICS calendar so the
// captured schedule can be re-imported elsewhere. Synthetic events (breaks,
// end-of-day markers) are skipped; they are derived, not source data.
func ExportWeek(week model.WeekData) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schoolcal//timetable//EN")

	for i, ev := range week.Events {
		if ev.IsBreak {
			continue
		}

		uid := fmt.Sprintf("%s-%d@schoolcal", ev.Start.Format("20060102T150405"), i)
		ve := cal.AddEvent(uid)
		ve.SetStartAt(ev.Start)
		if ev.HasEnd() {
			ve.SetEndAt(ev.End)
		}
		ve.SetSummary(ev.Summary)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}

	return cal.Serialize()
}
