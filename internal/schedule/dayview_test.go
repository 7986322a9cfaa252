package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolcal/internal/model"
)

func TestDayEventsFiltersAndSorts(t *testing.T) {
	events := []model.CalendarEvent{
		lesson(localDay(13, 11, 0), time.Hour, "Art"),
		lesson(localDay(14, 9, 0), time.Hour, "Tuesday thing"),
		lesson(localDay(13, 9, 0), time.Hour, "Maths"),
		{Summary: "No start"},
	}

	got := DayEvents(events, time.Monday)
	require.Len(t, got, 2)
	assert.Equal(t, "Maths", got[0].Summary)
	assert.Equal(t, "Art", got[1].Summary)
}

func TestWithEndOfDaySentinel(t *testing.T) {
	day := []model.CalendarEvent{
		lesson(localDay(13, 9, 0), time.Hour, "Maths"),
		lesson(localDay(13, 10, 0), time.Hour, "Science"),
	}

	got := WithEndOfDay(day, "End of Day")
	require.Len(t, got, 3)

	eod := got[2]
	assert.Equal(t, "End of Day", eod.Summary)
	assert.True(t, eod.Start.Equal(localDay(13, 11, 0)))
	assert.False(t, eod.HasEnd())
}

func TestWithEndOfDayEmptyDay(t *testing.T) {
	assert.Empty(t, WithEndOfDay(nil, "End of Day"))
}

func TestDayViewComposition(t *testing.T) {
	events := []model.CalendarEvent{
		lesson(localDay(13, 9, 0), time.Hour, "Maths"),
		lesson(localDay(13, 11, 0), time.Hour, "Science"),
	}

	view := DayView(events, time.Monday, DefaultBreakThreshold, "End of Day")
	require.Len(t, view, 4)
	assert.Equal(t, "Maths", view[0].Summary)
	assert.True(t, view[1].IsBreak)
	assert.Equal(t, "Science", view[2].Summary)
	assert.Equal(t, "End of Day", view[3].Summary)
}

func TestTemplateCoversSchoolDaysOnly(t *testing.T) {
	week := model.WeekData{Events: []model.CalendarEvent{
		lesson(localDay(13, 9, 0), time.Hour, "Maths"),   // Monday
		lesson(localDay(15, 9, 0), time.Hour, "Science"), // Wednesday
	}}

	tpl := Template(week, DefaultBreakThreshold, "End of Day")
	require.Len(t, tpl, 4) // two lessons, two sentinels

	var summaries []string
	for _, ev := range tpl {
		summaries = append(summaries, ev.Summary)
	}
	assert.Equal(t, []string{"Maths", "End of Day", "Science", "End of Day"}, summaries)
}
