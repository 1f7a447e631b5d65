package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// GoogleBackend talks to the Google Calendar v3 API. All wire timestamps are
// RFC3339; conversion to the scheduling zone happens in the caller.
type GoogleBackend struct {
	svc        *gcal.Service
	calendarID string
	logger     *logging.Logger
}

// GoogleConfig holds Google Calendar connection settings.
type GoogleConfig struct {
	CalendarID      string // "primary" targets the authenticated account
	CredentialsFile string // service-account JSON key path
}

// NewGoogleBackend builds a Google Calendar backend from service-account
// credentials.
func NewGoogleBackend(ctx context.Context, cfg GoogleConfig, logger *logging.Logger) (*GoogleBackend, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}

	opts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to build google calendar client: %w", err)
	}

	return &GoogleBackend{svc: svc, calendarID: cfg.CalendarID, logger: logger}, nil
}

var _ Backend = (*GoogleBackend)(nil)

// ListBusy lists events overlapping [start, end) and maps them to busy
// intervals. All-day events block their whole calendar day.
func (g *GoogleBackend) ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error) {
	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to list events: %w", err)
	}

	busy := make([]BusyInterval, 0, len(events.Items))
	for _, item := range events.Items {
		interval, err := eventInterval(item)
		if err != nil {
			g.logger.Warn("calendar: skipping unparseable event", "event_id", item.Id, "error", err)
			continue
		}
		busy = append(busy, interval)
	}
	return busy, nil
}

// CreateEvent inserts the event and returns its id and html link.
func (g *GoogleBackend) CreateEvent(ctx context.Context, start, end time.Time, title, description string) (CreatedEvent, error) {
	event := &gcal.Event{
		Summary:     title,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: start.Location().String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: end.Location().String(),
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("calendar: failed to insert event: %w", err)
	}

	g.logger.Info("calendar: event created",
		"event_id", created.Id,
		"start", start.Format(time.RFC3339),
	)
	return CreatedEvent{EventID: created.Id, Link: created.HtmlLink}, nil
}

// eventInterval maps a Google event to a BusyInterval. Timed events carry
// RFC3339 datetimes; all-day events carry bare dates.
func eventInterval(item *gcal.Event) (BusyInterval, error) {
	start, err := parseEventTime(item.Start)
	if err != nil {
		return BusyInterval{}, err
	}
	end, err := parseEventTime(item.End)
	if err != nil {
		return BusyInterval{}, err
	}
	return BusyInterval{Start: start, End: end}, nil
}

// parseEventTime reads either an RFC3339 datetime or an all-day bare date.
// Google's all-day end dates are already exclusive.
func parseEventTime(edt *gcal.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("event has no time")
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		return time.Parse("2006-01-02", edt.Date)
	}
	return time.Time{}, fmt.Errorf("event time has neither dateTime nor date")
}
