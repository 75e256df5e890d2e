package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcal/internal/models"
)

func TestBoxForMorningMeeting(t *testing.T) {
	svc := NewLayoutService()

	// 9:00-9:30 sits one grid unit below the 8 AM origin.
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	box := svc.BoxFor(start, end)
	assert.Equal(t, 80.0, box.Top)
	assert.Equal(t, 40.0, box.Height)
}

func TestBoxForZeroDuration(t *testing.T) {
	svc := NewLayoutService()

	start := time.Date(2025, 3, 10, 10, 15, 0, 0, time.UTC)
	box := svc.BoxFor(start, start)

	assert.Equal(t, 0.0, box.Height)
	assert.InDelta(t, (10.25-8)*80, box.Top, 1e-9)
}

func TestDayBucket(t *testing.T) {
	svc := NewLayoutService()

	sunday := time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, svc.DayBucket(sunday))
	assert.Equal(t, 1, svc.DayBucket(monday))
	assert.Equal(t, 6, svc.DayBucket(saturday))
}

func TestDayBucketMidnightCrossing(t *testing.T) {
	svc := NewLayoutService()

	// The portion after midnight is not rendered separately; the event
	// stays in its start day.
	start := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, svc.DayBucket(start))
}

func TestWeekGridBucketsByStartDay(t *testing.T) {
	svc := NewLayoutService()

	events := []models.Event{
		{ID: "a", Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{ID: "b", Start: time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)},
	}

	grid := svc.WeekGrid(events)

	require.Len(t, grid.Days[1], 1)
	require.Len(t, grid.Days[3], 1)
	assert.Equal(t, "a", grid.Days[1][0].Event.ID)
	assert.Equal(t, 1, grid.Days[1][0].Day)
	assert.Equal(t, 80.0, grid.Days[1][0].Box.Top)
	assert.Equal(t, "b", grid.Days[3][0].Event.ID)
}

func TestWeekGridExcludesLateStarts(t *testing.T) {
	svc := NewLayoutService()

	events := []models.Event{
		{ID: "visible", Start: time.Date(2025, 3, 10, 15, 59, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC)},
		{ID: "hidden", Start: time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)},
	}

	grid := svc.WeekGrid(events)

	require.Len(t, grid.Days[1], 1)
	assert.Equal(t, "visible", grid.Days[1][0].Event.ID)
}

func TestWeekGridKeepsOverlapsInPlace(t *testing.T) {
	svc := NewLayoutService()

	// Overlapping events share the same horizontal slot; no column packing.
	events := []models.Event{
		{ID: "a", Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{ID: "b", Start: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)},
	}

	grid := svc.WeekGrid(events)
	require.Len(t, grid.Days[1], 2)
}
