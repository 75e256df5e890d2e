package service

import (
	"time"

	"flowcal/internal/models"
)

const (
	// GridStartHour is the first hour drawn on the week grid (8 AM).
	GridStartHour = 8
	// PixelsPerHour is the vertical grid unit.
	PixelsPerHour = 80
	// lastRenderedStartHour excludes events starting at or after 4 PM
	// from the week grid, mirroring the visible 8:00-17:00 window.
	lastRenderedStartHour = 16
)

// LayoutService computes the screen geometry of events on the week grid.
// It is a pure computation: degenerate input (zero or negative duration)
// yields a zero-height box rather than an error.
type LayoutService struct{}

// NewLayoutService constructs the layout engine.
func NewLayoutService() *LayoutService {
	return &LayoutService{}
}

// BoxFor returns the vertical offset and height for an event.
// Top = (startHour - 8) * 80 and Height = duration in hours * 80, where
// hours are taken as hour + minute/60 of the instant's local clock.
func (s *LayoutService) BoxFor(start, end time.Time) models.EventBox {
	startHour := hourFraction(start)
	endHour := hourFraction(end)
	return models.EventBox{
		Top:    (startHour - GridStartHour) * PixelsPerHour,
		Height: (endHour - startHour) * PixelsPerHour,
	}
}

// DayBucket returns the day column for an event, 0=Sunday..6=Saturday,
// derived solely from the start instant's local calendar day. Events that
// cross midnight stay in their start day.
func (s *LayoutService) DayBucket(start time.Time) int {
	return int(start.Weekday())
}

// WeekGrid buckets events into the seven day columns with computed
// geometry. Events starting at or after 4 PM fall outside the rendered
// window and are skipped. Overlapping events are not repacked into
// sub-columns; they share the same horizontal position.
func (s *LayoutService) WeekGrid(events []models.Event) models.WeekGrid {
	var grid models.WeekGrid
	for _, event := range events {
		if event.Start.Hour() >= lastRenderedStartHour {
			continue
		}
		day := s.DayBucket(event.Start)
		grid.Days[day] = append(grid.Days[day], models.PositionedEvent{
			Event: event,
			Box:   s.BoxFor(event.Start, event.End),
			Day:   day,
		})
	}
	return grid
}

func hourFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
