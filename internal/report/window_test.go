package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyWindows(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	current, baseline := dailyWindows(now)

	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), current.Start)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), current.End)
	assert.Equal(t, "2026-08-29", current.FromDate())
	assert.Equal(t, "2026-08-29", current.ToDate())

	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), baseline.Start)
	assert.Equal(t, current.Start, baseline.End)
}

func TestWeeklyWindows(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	current, baseline := weeklyWindows(now)

	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), current.Start)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), current.End)
	assert.Equal(t, "2026-08-23", current.FromDate())
	assert.Equal(t, "2026-08-29", current.ToDate())

	assert.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), baseline.Start)
	assert.Equal(t, current.Start, baseline.End)
}

func TestMonitorWindows(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	current, baseline := monitorWindows(now)

	assert.Equal(t, now.Add(-24*time.Hour), current.Start)
	assert.Equal(t, now, current.End)
	assert.Equal(t, current.Start.AddDate(0, 0, -7), baseline.Start)
	assert.Equal(t, current.Start, baseline.End)
}
