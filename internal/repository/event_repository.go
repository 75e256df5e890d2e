package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flowcal/internal/models"
)

// EventRepository persists calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByOwner returns the owner's events inside the optional date window,
// ordered by start ascending. Bounds apply independently: the start bound
// filters on start_at, the end bound on end_at.
func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string, filter models.EventFilter) ([]models.Event, error) {
	where := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("start_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("end_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	query := fmt.Sprintf(`SELECT id, owner_id, title, start_at, end_at, color, description, location, attendees, organizer, created_at, updated_at
FROM events WHERE %s ORDER BY start_at ASC`, strings.Join(where, " AND "))

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetByID fetches a single event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, owner_id, title, start_at, end_at, color, description, location, attendees, organizer, created_at, updated_at
FROM events WHERE id = $1 LIMIT 1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event, assigning its id when absent.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	if event.Attendees == nil {
		event.Attendees = []string{}
	}

	const query = `INSERT INTO events (id, owner_id, title, start_at, end_at, color, description, location, attendees, organizer, created_at, updated_at)
VALUES (:id, :owner_id, :title, :start_at, :end_at, :color, :description, :location, :attendees, :organizer, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}
