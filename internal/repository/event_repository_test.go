package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcal/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var eventColumns = []string{
	"id", "owner_id", "title", "start_at", "end_at", "color",
	"description", "location", "attendees", "organizer", "created_at", "updated_at",
}

func eventRow(id, owner string, start, end time.Time) []driver.Value {
	now := time.Now().UTC()
	return []driver.Value{id, owner, "Meeting", start, end, "blue", "", "", "{}", "", now, now}
}

func TestListByOwnerNoBounds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_id, title, start_at, end_at, color, description, location, attendees, organizer, created_at, updated_at
FROM events WHERE owner_id = $1 ORDER BY start_at ASC`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(eventRow("e1", "alice", start, start.Add(time.Hour))...))

	events, err := repo.ListByOwner(context.Background(), "alice", models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, models.ColorBlue, events[0].Color)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerStartBound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = $1 AND start_at >= $2 ORDER BY start_at ASC`)).
		WithArgs("alice", from).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	events, err := repo.ListByOwner(context.Background(), "alice", models.EventFilter{StartDate: &from})
	require.NoError(t, err)
	assert.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerEndBound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	until := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = $1 AND end_at <= $2 ORDER BY start_at ASC`)).
		WithArgs("alice", until).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.ListByOwner(context.Background(), "alice", models.EventFilter{EndDate: &until})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerBothBounds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = $1 AND start_at >= $2 AND end_at <= $3 ORDER BY start_at ASC`)).
		WithArgs("alice", from, until).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.ListByOwner(context.Background(), "alice", models.EventFilter{StartDate: &from, EndDate: &until})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerScansAttendeesArray(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = $1 ORDER BY start_at ASC`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("e1", "alice", "Sync", start, start.Add(time.Hour), "green",
				"weekly", "Room 4", "{alice@example.com,bob@example.com}", "alice@example.com", now, now))

	events, err := repo.ListByOwner(context.Background(), "alice", models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.EqualValues(t, []string{"alice@example.com", "bob@example.com"}, events[0].Attendees)
	assert.Equal(t, "alice@example.com", events[0].Organizer)
}

func TestGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM events WHERE id = $1 LIMIT 1`)).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(eventRow("e1", "alice", start, start.Add(time.Hour))...))

	event, err := repo.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)
	assert.Equal(t, "alice", event.OwnerID)
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := &models.Event{
		OwnerID: "alice",
		Title:   "Meeting",
		Start:   start,
		End:     start.Add(time.Hour),
		Color:   models.ColorBlue,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.False(t, event.UpdatedAt.IsZero())
	assert.NotNil(t, event.Attendees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKeepsProvidedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:      "fixed",
		OwnerID: "alice",
		Title:   "Meeting",
		Start:   start,
		End:     start.Add(time.Hour),
		Color:   models.ColorBlue,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, "fixed", event.ID)
}
