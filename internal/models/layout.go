package models

// EventBox is the vertical geometry of one event on the time grid,
// expressed in pixel units (80 per hour, origin at 8:00).
type EventBox struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// PositionedEvent pairs an event with its computed grid geometry.
type PositionedEvent struct {
	Event Event    `json:"event"`
	Box   EventBox `json:"box"`
	Day   int      `json:"day"`
}

// WeekGrid groups positioned events into the seven day columns of the
// rendered week, index 0 = Sunday through 6 = Saturday.
type WeekGrid struct {
	Days [7][]PositionedEvent `json:"days"`
}
