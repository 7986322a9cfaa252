package model

import "time"

// CalendarEvent is a single timetable entry. Real events come out of the
// ICS parser; synthetic ones (breaks, the end-of-day marker) are produced
// by the schedule layer. Events are never mutated after creation.
type CalendarEvent struct {
	Start       time.Time
	End         time.Time // zero value means open-ended (e.g. "End of Day")
	Summary     string
	Location    string
	Description string
	IsBreak     bool
}

// HasEnd reports whether the event has a defined end time. Open-ended
// events can be countdown targets but are never considered "in progress".
func (e CalendarEvent) HasEnd() bool {
	return !e.End.IsZero()
}

// WeekData is one Monday–Friday window and the events whose start falls
// inside it. One WeekData is kept as the repeating template week and
// regenerated wholesale on every import.
type WeekData struct {
	Monday time.Time // local midnight Monday
	Friday time.Time // local 23:59:59.999 Friday
	Events []CalendarEvent
}

// NextEvent is the resolver's answer to "what should the countdown show".
// Target is the instant the countdown reaches zero: the end of the running
// event if one is active, otherwise the start of Event.
type NextEvent struct {
	Event  CalendarEvent
	Target time.Time
}

// Subject is a markbook subject. Names are the normalized form of the
// event summaries seen during import.
type Subject struct {
	ID      int64
	Name    string
	Colour  string
	Teacher string
}

// Mark is a single recorded exam result for a subject.
type Mark struct {
	ID        int64
	SubjectID int64
	Title     string
	Score     float64
	MaxScore  float64
	Weight    float64
	TakenOn   time.Time
	CreatedAt time.Time
}

// Percent returns the mark as a percentage, or 0 for a zero max score.
func (m Mark) Percent() float64 {
	if m.MaxScore <= 0 {
		return 0
	}
	return m.Score / m.MaxScore * 100
}

// SubjectSummary aggregates the marks of one subject.
type SubjectSummary struct {
	Subject     Subject
	MarkCount   int
	MeanPercent float64
}

// EventSnapshot is the persisted JSON form of a CalendarEvent. Times are
// ISO strings so the snapshot stays portable across storage backends.
type EventSnapshot struct {
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Summary     string `json:"summary"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// WeekSnapshot is the persisted JSON form of the template week.
type WeekSnapshot struct {
	Monday string          `json:"monday"`
	Friday string          `json:"friday"`
	Events []EventSnapshot `json:"events"`
}

// Snapshot converts the week into its persisted form. Synthetic events
// never reach the snapshot; only real parsed events are stored.
func (w WeekData) Snapshot() WeekSnapshot {
	snap := WeekSnapshot{
		Monday: w.Monday.Format(time.RFC3339Nano),
		Friday: w.Friday.Format(time.RFC3339Nano),
		Events: make([]EventSnapshot, 0, len(w.Events)),
	}
	for _, ev := range w.Events {
		es := EventSnapshot{
			Start:       ev.Start.Format(time.RFC3339Nano),
			Summary:     ev.Summary,
			Location:    ev.Location,
			Description: ev.Description,
		}
		if ev.HasEnd() {
			es.End = ev.End.Format(time.RFC3339Nano)
		}
		snap.Events = append(snap.Events, es)
	}
	return snap
}

// WeekFromSnapshot reconstructs a WeekData by re-parsing the ISO strings.
// Events whose start fails to parse are skipped; a broken optional end
// degrades to open-ended rather than losing the event.
func WeekFromSnapshot(snap WeekSnapshot) (WeekData, error) {
	monday, err := time.Parse(time.RFC3339Nano, snap.Monday)
	if err != nil {
		return WeekData{}, err
	}
	friday, err := time.Parse(time.RFC3339Nano, snap.Friday)
	if err != nil {
		return WeekData{}, err
	}

	week := WeekData{
		Monday: monday,
		Friday: friday,
		Events: make([]CalendarEvent, 0, len(snap.Events)),
	}
	for _, es := range snap.Events {
		start, serr := time.Parse(time.RFC3339Nano, es.Start)
		if serr != nil {
			continue
		}
		ev := CalendarEvent{
			Start:       start,
			Summary:     es.Summary,
			Location:    es.Location,
			Description: es.Description,
		}
		if es.End != "" {
			if end, eerr := time.Parse(time.RFC3339Nano, es.End); eerr == nil {
				ev.End = end
			}
		}
		week.Events = append(week.Events, ev)
	}
	return week, nil
}
