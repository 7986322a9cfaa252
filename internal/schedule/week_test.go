package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolcal/internal/model"
)

// 2025-01-13 is a Monday.
func localDay(day int, hour, min int) time.Time {
	return time.Date(2025, 1, day, hour, min, 0, 0, time.Local)
}

func lesson(start time.Time, dur time.Duration, summary string) model.CalendarEvent {
	return model.CalendarEvent{Start: start, End: start.Add(dur), Summary: summary}
}

func TestMondayOf(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)

	for day := 13; day <= 18; day++ {
		got := MondayOf(localDay(day, 10, 30))
		assert.True(t, got.Equal(monday), "day=%d got=%v", day, got)
	}
	// Sunday belongs to the week that started six days earlier.
	got := MondayOf(localDay(19, 10, 30))
	assert.True(t, got.Equal(monday))
}

func TestGroupIntoWeeksWindowing(t *testing.T) {
	events := []model.CalendarEvent{
		lesson(localDay(13, 9, 0), time.Hour, "Maths"),
		lesson(localDay(15, 11, 0), time.Hour, "Science"),
		lesson(localDay(17, 14, 0), time.Hour, "Art"),
		lesson(localDay(18, 10, 0), time.Hour, "Sport"),  // Saturday
		lesson(localDay(19, 10, 0), time.Hour, "Church"), // Sunday
		{Summary: "No start"},                            // invalid time, filtered
	}

	weeks := GroupIntoWeeks(events)
	require.Len(t, weeks, 1)

	week := weeks[0]
	assert.True(t, week.Monday.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)))
	assert.True(t, week.Friday.Equal(time.Date(2025, 1, 17, 23, 59, 59, 999e6, time.Local)))
	require.Len(t, week.Events, 3)

	for _, ev := range week.Events {
		assert.False(t, ev.Start.Before(week.Monday))
		assert.False(t, ev.Start.After(week.Friday))
		wd := ev.Start.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestGroupIntoWeeksSortedAscending(t *testing.T) {
	events := []model.CalendarEvent{
		lesson(localDay(22, 9, 0), time.Hour, "Later week"), // Wed 2025-01-22
		lesson(localDay(14, 9, 0), time.Hour, "Earlier week"),
	}

	weeks := GroupIntoWeeks(events)
	require.Len(t, weeks, 2)
	assert.True(t, weeks[0].Monday.Before(weeks[1].Monday))
}

func TestGroupIntoWeeksWeekendOnlyProducesNothing(t *testing.T) {
	events := []model.CalendarEvent{
		lesson(localDay(18, 10, 0), time.Hour, "Saturday sport"),
		lesson(localDay(19, 10, 0), time.Hour, "Sunday lunch"),
	}
	assert.Empty(t, GroupIntoWeeks(events))
}

func TestSelectBestWeekMostPopulated(t *testing.T) {
	weeks := []model.WeekData{
		{Monday: localDay(13, 0, 0), Events: []model.CalendarEvent{lesson(localDay(13, 9, 0), time.Hour, "a")}},
		{Monday: localDay(20, 0, 0), Events: []model.CalendarEvent{
			lesson(localDay(20, 9, 0), time.Hour, "b"),
			lesson(localDay(21, 9, 0), time.Hour, "c"),
		}},
	}

	best, err := SelectBestWeek(weeks)
	require.NoError(t, err)
	assert.True(t, best.Monday.Equal(localDay(20, 0, 0)))
}

func TestSelectBestWeekTieKeepsEarliest(t *testing.T) {
	weeks := []model.WeekData{
		{Monday: localDay(13, 0, 0), Events: []model.CalendarEvent{lesson(localDay(13, 9, 0), time.Hour, "a")}},
		{Monday: localDay(20, 0, 0), Events: []model.CalendarEvent{lesson(localDay(20, 9, 0), time.Hour, "b")}},
	}

	best, err := SelectBestWeek(weeks)
	require.NoError(t, err)
	assert.True(t, best.Monday.Equal(localDay(13, 0, 0)))
}

func TestSelectBestWeekEmptyIsTerminal(t *testing.T) {
	_, err := SelectBestWeek(nil)
	assert.ErrorIs(t, err, ErrNoSchoolWeek)

	_, err = SelectBestWeek([]model.WeekData{{Monday: localDay(13, 0, 0)}})
	assert.ErrorIs(t, err, ErrNoSchoolWeek)
}
