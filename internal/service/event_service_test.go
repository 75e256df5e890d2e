package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowcal/internal/models"
	appErrors "flowcal/pkg/errors"
)

// mockEventRepo implements the filter semantics in memory so service
// tests can assert on the combined behaviour.
type mockEventRepo struct {
	events    map[string][]models.Event
	listErr   error
	createErr error
}

func (m *mockEventRepo) ListByOwner(ctx context.Context, ownerID string, filter models.EventFilter) ([]models.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Event
	for _, ev := range m.events[ownerID] {
		if filter.StartDate != nil && ev.Start.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && ev.End.After(*filter.EndDate) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	event.ID = "assigned"
	if m.events == nil {
		m.events = make(map[string][]models.Event)
	}
	m.events[event.OwnerID] = append(m.events[event.OwnerID], *event)
	return nil
}

func newEventService(repo *mockEventRepo) *EventService {
	return NewEventService(repo, nil, validator.New(), zap.NewNop(), EventCacheConfig{})
}

func seedEvents() *mockEventRepo {
	day := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC) }
	return &mockEventRepo{events: map[string][]models.Event{
		"alice": {
			{ID: "e2", OwnerID: "alice", Title: "Lunch", Start: day(11, 12), End: day(11, 13)},
			{ID: "e1", OwnerID: "alice", Title: "Standup", Start: day(10, 9), End: day(10, 10)},
			{ID: "e3", OwnerID: "alice", Title: "Review", Start: day(14, 15), End: day(14, 16)},
		},
		"bob": {
			{ID: "x1", OwnerID: "bob", Title: "Secret", Start: day(10, 9), End: day(10, 10)},
		},
	}}
}

func TestListScopedToOwner(t *testing.T) {
	svc := newEventService(seedEvents())

	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, "alice", ev.OwnerID)
	}
}

func TestListOrderedByStartAscending(t *testing.T) {
	svc := newEventService(seedEvents())

	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)
	assert.Equal(t, "e3", events[2].ID)
}

func TestListStartBoundOnly(t *testing.T) {
	svc := newEventService(seedEvents())

	from := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{StartDate: &from})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e3", events[1].ID)
}

func TestListEndBoundOnly(t *testing.T) {
	svc := newEventService(seedEvents())

	until := time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC)
	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{EndDate: &until})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)
}

func TestListBothBounds(t *testing.T) {
	svc := newEventService(seedEvents())

	from := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC)
	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{StartDate: &from, EndDate: &until})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e2", events[0].ID)
}

func TestListIdempotent(t *testing.T) {
	svc := newEventService(seedEvents())

	first, _, err := svc.List(context.Background(), "alice", ListEventsRequest{})
	require.NoError(t, err)
	second, _, err := svc.List(context.Background(), "alice", ListEventsRequest{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListRequiresIdentity(t *testing.T) {
	svc := newEventService(seedEvents())

	_, _, err := svc.List(context.Background(), "", ListEventsRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestListEmptyResultIsNotAnError(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	events, _, err := svc.List(context.Background(), "nobody", ListEventsRequest{})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestListWrapsStorageErrors(t *testing.T) {
	svc := newEventService(&mockEventRepo{listErr: errors.New("connection reset")})

	_, _, err := svc.List(context.Background(), "alice", ListEventsRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCreateStampsOwnerAndDefaults(t *testing.T) {
	repo := &mockEventRepo{}
	svc := newEventService(repo)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	event, err := svc.Create(context.Background(), "alice", CreateEventRequest{Title: "Standup", Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, "assigned", event.ID)
	assert.Equal(t, "alice", event.OwnerID)
	assert.Equal(t, models.ColorBlue, event.Color)
	assert.NotNil(t, event.Attendees)
	assert.Empty(t, event.Attendees)
}

func TestCreateRoundTrip(t *testing.T) {
	repo := &mockEventRepo{}
	svc := newEventService(repo)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	req := CreateEventRequest{
		Title:     "Standup",
		Start:     start,
		End:       start.Add(30 * time.Minute),
		Color:     "green",
		Location:  "Room 4",
		Attendees: []string{"alice@example.com", "bob@example.com"},
		Organizer: "alice@example.com",
	}
	created, err := svc.Create(context.Background(), "alice", req)
	require.NoError(t, err)

	window := start.Add(-time.Hour)
	events, _, err := svc.List(context.Background(), "alice", ListEventsRequest{StartDate: &window})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
	assert.Equal(t, req.Title, events[0].Title)
	assert.Equal(t, models.ColorGreen, events[0].Color)
	assert.EqualValues(t, req.Attendees, events[0].Attendees)
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "alice", CreateEventRequest{Start: start, End: start.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "alice", CreateEventRequest{Title: "Backwards", Start: start, End: start.Add(-time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateRejectsUnknownColor(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "alice", CreateEventRequest{Title: "Odd", Start: start, End: start.Add(time.Hour), Color: "chartreuse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateRequiresIdentity(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "", CreateEventRequest{Title: "Orphan", Start: start, End: start.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

type recordingCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.store == nil {
		c.store = make(map[string][]byte)
	}
	c.store[key] = []byte("set")
	return nil
}

func (c *recordingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}

func TestCreateInvalidatesOwnerCache(t *testing.T) {
	repo := &mockEventRepo{}
	cache := &recordingCache{}
	svc := NewEventService(repo, cache, validator.New(), zap.NewNop(), EventCacheConfig{Enabled: true, TTL: time.Minute})

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "alice", CreateEventRequest{Title: "Standup", Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "events:alice:*", cache.deleted[0])
}
