package schedule

import (
	"time"

	"schoolcal/internal/model"
)

// BreakSummary is the display title of synthesized break events.
const BreakSummary = "Break"

// DefaultBreakThreshold is the minimum gap between two lessons before a
// break is synthesized. Gaps at or below it are treated as rounding noise
// between consecutive periods.
const DefaultBreakThreshold = time.Minute

// InsertBreaks inserts synthetic break events into the gaps of a
// time-ordered single-day event list. The gap is measured from the current
// event's end (or its start, when open-ended) to the next event's start;
// only gaps strictly greater than threshold produce a break. The break
// occupies (end+1ms, next.start−1ms) so it never overlaps its neighbors.
//
// All original events are preserved in order; nothing is removed.
func InsertBreaks(events []model.CalendarEvent, threshold time.Duration) []model.CalendarEvent {
	if threshold <= 0 {
		threshold = DefaultBreakThreshold
	}
	if len(events) < 2 {
		return events
	}

	out := make([]model.CalendarEvent, 0, len(events)*2-1)
	for i, cur := range events {
		out = append(out, cur)
		if i+1 == len(events) {
			break
		}

		anchor := cur.End
		if !cur.HasEnd() {
			anchor = cur.Start
		}

		next := events[i+1]
		if next.Start.Sub(anchor) <= threshold {
			continue
		}

		out = append(out, model.CalendarEvent{
			Start:   anchor.Add(time.Millisecond),
			End:     next.Start.Add(-time.Millisecond),
			Summary: BreakSummary,
			IsBreak: true,
		})
	}
	return out
}
