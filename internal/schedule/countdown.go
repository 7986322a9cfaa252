package schedule

import (
	"fmt"
	"time"
)

// FormatCountdown renders a duration for the live countdown display.
// Non-positive input renders as "00:00" so the UI never flashes a stale
// "done" label before the next resolver tick.
//
// Shapes: "Dd HH:MM:SS" for a day or more, "HH:MM:SS" for an hour or
// more, otherwise "MM:SS".
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}

	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	seconds := int((d - time.Duration(minutes)*time.Minute) / time.Second)

	switch {
	case days >= 1:
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
	case hours >= 1:
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
}
