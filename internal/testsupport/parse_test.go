package testsupport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseReminder(t *testing.T) {
	// Sunday 2026-10-18 10:00
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		message string
		task    string
		due     time.Time
		ok      bool
	}{
		{"clock pm", "Remind me to call mom at 11.30 PM", "call mom", time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC), true},
		{"clock in the past rolls over", "remind me to stretch at 9:15", "stretch", time.Date(2026, 10, 19, 9, 15, 0, 0, time.UTC), true},
		{"twelve am", "remind me to sleep at 12:00 am", "sleep", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), true},
		{"relative minutes", "remind me to check the oven in 10 minutes", "check the oven", now.Add(10 * time.Minute), true},
		{"relative seconds", "remind me to blink in 1 second", "blink", now.Add(time.Second), true},
		{"tomorrow default", "remind me to run tomorrow", "run", time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), true},
		{"tomorrow with clock", "remind me to run tomorrow at 6:30 am", "run", time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC), true},
		{"next monday", "remind me to pay rent next monday", "pay rent", time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), true},
		{"no time", "remind me to call mom", "", time.Time{}, false},
		{"invalid clock", "remind me to call at 25:00", "", time.Time{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, due, ok := ParseReminder(tc.message, now)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.task, task)
			assert.True(t, tc.due.Equal(due), "expected %v, got %v", tc.due, due)
		})
	}
}
