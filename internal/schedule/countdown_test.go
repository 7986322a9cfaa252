package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	for _, tc := range []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{-time.Hour, "00:00"},
		{time.Second, "00:01"},
		{90 * time.Second, "01:30"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{3*time.Hour + 25*time.Minute + 9*time.Second, "03:25:09"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
		{24 * time.Hour, "1d 00:00:00"},
		{2*24*time.Hour + 13*time.Hour + 5*time.Minute + 30*time.Second, "2d 13:05:30"},
	} {
		assert.Equal(t, tc.want, FormatCountdown(tc.d), "d=%v", tc.d)
	}
}

func TestFormatCountdownTruncatesSubSecond(t *testing.T) {
	assert.Equal(t, "00:01", FormatCountdown(1900*time.Millisecond))
	assert.Equal(t, "00:00", FormatCountdown(0))
}
