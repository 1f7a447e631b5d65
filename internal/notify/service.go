// Package notify delivers booking notifications to the calendar owner.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// Config holds notification recipients and preferences.
type Config struct {
	// OwnerEmail receives a confirmation for every booking. Notifications are
	// disabled when empty.
	OwnerEmail string
	OwnerName  string
}

// Service emails the calendar owner when an appointment is booked.
type Service struct {
	email  EmailSender
	cfg    Config
	logger *logging.Logger
}

// NewService creates a booking notification service.
func NewService(email EmailSender, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, cfg: cfg, logger: logger}
}

// BookingCreated notifies the owner about a newly confirmed booking.
func (s *Service) BookingCreated(ctx context.Context, res booking.Result) error {
	if s == nil || s.email == nil || s.cfg.OwnerEmail == "" {
		return nil
	}

	when := formatBookingTime(res)
	subject := fmt.Sprintf("New booking: %s on %s", res.Title, when)
	body := fmt.Sprintf(`A new appointment has been booked.

Title: %s
When: %s
Duration: %d minutes`, res.Title, when, res.DurationMinutes)
	if res.Link != "" {
		body += fmt.Sprintf("\nCalendar event: %s", res.Link)
	}

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>New booking</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px;"><strong>Title:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>When:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Duration:</strong></td><td style="padding: 8px;">%d minutes</td></tr>
</table>%s
</div>`, res.Title, when, res.DurationMinutes, formatLinkHTML(res.Link))

	msg := EmailMessage{
		To:      s.cfg.OwnerEmail,
		ToName:  s.cfg.OwnerName,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send booking email", "error", err, "to", s.cfg.OwnerEmail)
		return fmt.Errorf("notify: booking email: %w", err)
	}
	s.logger.Info("notify: booking email sent", "to", s.cfg.OwnerEmail, "event_id", res.EventID)
	return nil
}

func formatBookingTime(res booking.Result) string {
	t, err := time.Parse("2006-01-02 15:04", res.Date+" "+res.Time)
	if err != nil {
		return res.Date + " " + res.Time
	}
	return t.Format("Monday, January 2 at 3:04 PM")
}

func formatLinkHTML(link string) string {
	if link == "" {
		return ""
	}
	return fmt.Sprintf(`
<p><a href="%s">Open calendar event</a></p>`, link)
}
