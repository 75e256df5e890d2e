package models

import (
	"time"

	"github.com/lib/pq"
)

// EventColor selects the display color of an event on the week grid.
type EventColor string

const (
	ColorBlue   EventColor = "blue"
	ColorGreen  EventColor = "green"
	ColorPurple EventColor = "purple"
	ColorYellow EventColor = "yellow"
	ColorRed    EventColor = "red"
)

// DefaultColor is applied when a create payload omits the color tag.
const DefaultColor = ColorBlue

// Valid reports whether the color is one of the fixed set.
func (c EventColor) Valid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorPurple, ColorYellow, ColorRed:
		return true
	default:
		return false
	}
}

// Event represents one scheduled occurrence owned by exactly one user.
// ID and OwnerID are immutable after creation; there is no update or
// delete path in this design.
type Event struct {
	ID          string         `db:"id" json:"id"`
	OwnerID     string         `db:"owner_id" json:"ownerId"`
	Title       string         `db:"title" json:"title"`
	Start       time.Time      `db:"start_at" json:"start"`
	End         time.Time      `db:"end_at" json:"end"`
	Color       EventColor     `db:"color" json:"color"`
	Description string         `db:"description" json:"description,omitempty"`
	Location    string         `db:"location" json:"location,omitempty"`
	Attendees   pq.StringArray `db:"attendees" json:"attendees"`
	Organizer   string         `db:"organizer" json:"organizer,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"-"`
	UpdatedAt   time.Time      `db:"updated_at" json:"-"`
}

// EventFilter narrows an owner's events to an optional date window.
// Bound semantics: StartDate filters start_at >= StartDate, EndDate
// filters end_at <= EndDate; each bound applies independently.
type EventFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}
