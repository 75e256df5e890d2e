package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"flowcal/internal/models"
	appErrors "flowcal/pkg/errors"
)

type eventRepository interface {
	ListByOwner(ctx context.Context, ownerID string, filter models.EventFilter) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
}

type eventCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EventCacheConfig tunes the optional list cache.
type EventCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// EventService answers owner-scoped event queries and accepts writes.
// Every operation requires the caller's verified owner id; client-supplied
// owner fields are never trusted.
type EventService struct {
	repo      eventRepository
	cache     eventCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheCfg  EventCacheConfig
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, cache eventCache, validate *validator.Validate, logger *zap.Logger, cacheCfg EventCacheConfig) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EventService{repo: repo, cache: cache, validator: validate, logger: logger, cacheCfg: cacheCfg}
	svc.validator.RegisterValidation("eventcolor", func(fl validator.FieldLevel) bool {
		return models.EventColor(fl.Field().String()).Valid()
	})
	return svc
}

// ListEventsRequest carries the optional date window for a list query.
type ListEventsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateEventRequest describes the create payload. The owner is stamped
// from the session, never from the body.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	Color       string    `json:"color" validate:"omitempty,eventcolor"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Attendees   []string  `json:"attendees"`
	Organizer   string    `json:"organizer"`
}

// List returns the owner's events inside the optional window, ordered by
// start ascending. The second return value reports a cache hit.
func (s *EventService) List(ctx context.Context, ownerID string, req ListEventsRequest) ([]models.Event, bool, error) {
	if ownerID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "missing session identity")
	}

	key := s.listCacheKey(ownerID, req)
	if s.cacheCfg.Enabled && s.cache != nil {
		var cached []models.Event
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, true, nil
		}
	}

	events, err := s.repo.ListByOwner(ctx, ownerID, models.EventFilter{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	if events == nil {
		events = []models.Event{}
	}

	if s.cacheCfg.Enabled && s.cache != nil {
		if err := s.cache.Set(ctx, key, events, s.cacheCfg.TTL); err != nil {
			s.logger.Warn("failed to cache event list", zap.Error(err))
		}
	}

	return events, false, nil
}

// Create validates the payload, stamps the owner, and persists the event.
func (s *EventService) Create(ctx context.Context, ownerID string, req CreateEventRequest) (*models.Event, error) {
	if ownerID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session identity")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.End.After(req.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	}

	color := models.EventColor(req.Color)
	if req.Color == "" {
		color = models.DefaultColor
	}

	attendees := req.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	event := &models.Event{
		OwnerID:     ownerID,
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Color:       color,
		Description: req.Description,
		Location:    req.Location,
		Attendees:   attendees,
		Organizer:   req.Organizer,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	if s.cacheCfg.Enabled && s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("events:%s:*", ownerID)); err != nil {
			s.logger.Warn("failed to invalidate event cache", zap.Error(err))
		}
	}

	return event, nil
}

func (s *EventService) listCacheKey(ownerID string, req ListEventsRequest) string {
	start, end := "-", "-"
	if req.StartDate != nil {
		start = req.StartDate.UTC().Format(time.RFC3339)
	}
	if req.EndDate != nil {
		end = req.EndDate.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("events:%s:%s:%s", ownerID, start, end)
}
