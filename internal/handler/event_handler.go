package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flowcal/internal/middleware"
	"flowcal/internal/models"
	"flowcal/internal/service"
	appErrors "flowcal/pkg/errors"
	"flowcal/pkg/response"
)

type eventService interface {
	List(ctx context.Context, ownerID string, req service.ListEventsRequest) ([]models.Event, bool, error)
	Create(ctx context.Context, ownerID string, req service.CreateEventRequest) (*models.Event, error)
}

type layoutService interface {
	WeekGrid(events []models.Event) models.WeekGrid
}

type exportService interface {
	Export(ctx context.Context, ownerID string, req service.ListEventsRequest, format string) (*service.ExportResult, error)
}

// EventHandler exposes the /events endpoints.
type EventHandler struct {
	events  eventService
	layout  layoutService
	export  exportService
	metrics *service.MetricsService
}

// NewEventHandler constructs the handler. export may be nil when the
// export endpoint is disabled.
func NewEventHandler(events eventService, layout layoutService, export exportService, metrics *service.MetricsService) *EventHandler {
	return &EventHandler{events: events, layout: layout, export: export, metrics: metrics}
}

// List godoc
// @Summary List events
// @Description Lists the caller's events, optionally bounded by a date range
// @Tags Events
// @Produce json
// @Param startDate query string false "RFC3339 lower bound on event start"
// @Param endDate query string false "RFC3339 upper bound on event end"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := parseListRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, cacheHit, err := h.events.List(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	h.metrics.RecordCacheOperation(cacheHit)
	response.JSON(c, http.StatusOK, events, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create event
// @Description Creates an event owned by the caller
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// Week godoc
// @Summary Week grid
// @Description Returns the caller's events bucketed into day columns with
// @Description computed grid geometry (80 px per hour, 8 AM origin)
// @Tags Events
// @Produce json
// @Param startDate query string false "RFC3339 lower bound on event start"
// @Param endDate query string false "RFC3339 upper bound on event end"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events/week [get]
func (h *EventHandler) Week(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := parseListRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, cacheHit, err := h.events.List(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	h.metrics.RecordCacheOperation(cacheHit)
	response.JSON(c, http.StatusOK, h.layout.WeekGrid(events), middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export events
// @Description Streams the caller's events as ics, csv, or pdf
// @Tags Events
// @Produce octet-stream
// @Param format query string false "Export format (ics, csv, pdf)" default(ics)
// @Param startDate query string false "RFC3339 lower bound on event start"
// @Param endDate query string false "RFC3339 upper bound on event end"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}

	req, err := parseListRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.export.Export(c.Request.Context(), claims.UserID, req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// parseListRequest reads the optional startDate/endDate query params.
// Malformed instants are rejected, never coerced to the current time.
func parseListRequest(c *gin.Context) (service.ListEventsRequest, error) {
	var req service.ListEventsRequest

	start, err := parseInstant(c.Query("startDate"))
	if err != nil {
		return req, err
	}
	end, err := parseInstant(c.Query("endDate"))
	if err != nil {
		return req, err
	}

	req.StartDate = start
	req.EndDate = end
	return req, nil
}

func parseInstant(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected RFC3339 instant")
	}
	return &parsed, nil
}
