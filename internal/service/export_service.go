package service

import (
	"context"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"flowcal/internal/models"
	appErrors "flowcal/pkg/errors"
	"flowcal/pkg/export"
)

// Export formats supported by the events export endpoint.
const (
	FormatICS = "ics"
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type eventLister interface {
	List(ctx context.Context, ownerID string, req ListEventsRequest) ([]models.Event, bool, error)
}

// ExportService renders the caller's events as a downloadable document.
type ExportService struct {
	events eventLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(events eventLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		events: events,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportResult is a rendered document ready to stream to the client.
type ExportResult struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Export fetches the owner's events for the optional window and renders
// them in the requested format. An empty format defaults to iCalendar.
func (s *ExportService) Export(ctx context.Context, ownerID string, req ListEventsRequest, format string) (*ExportResult, error) {
	if format == "" {
		format = FormatICS
	}
	format = strings.ToLower(format)

	events, _, err := s.events.List(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatICS:
		return s.renderICS(events)
	case FormatCSV:
		body, err := s.csv.Render(agendaFor(events))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Body: body, ContentType: "text/csv", Filename: "events.csv"}, nil
	case FormatPDF:
		body, err := s.pdf.Render(agendaFor(events))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Body: body, ContentType: "application/pdf", Filename: "events.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ExportService) renderICS(events []models.Event) (*ExportResult, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//flowcal//calendar//EN")

	for _, event := range events {
		ve := cal.AddEvent(event.ID)
		ve.SetStartAt(event.Start.UTC())
		ve.SetEndAt(event.End.UTC())
		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.Organizer != "" {
			ve.SetOrganizer(event.Organizer)
		}
		for _, attendee := range event.Attendees {
			ve.AddAttendee(attendee)
		}
	}

	return &ExportResult{
		Body:        []byte(cal.Serialize()),
		ContentType: "text/calendar",
		Filename:    "events.ics",
	}, nil
}

func agendaFor(events []models.Event) export.Agenda {
	agenda := export.Agenda{
		Title:   "Schedule",
		Columns: []string{"Title", "Start", "End", "Location", "Organizer", "Attendees"},
	}
	for _, event := range events {
		agenda.Rows = append(agenda.Rows, []string{
			event.Title,
			event.Start.UTC().Format(time.RFC3339),
			event.End.UTC().Format(time.RFC3339),
			event.Location,
			event.Organizer,
			strings.Join(event.Attendees, ", "),
		})
	}
	return agenda
}
