// Package booking commits appointments against the calendar backend. The
// executor re-validates availability immediately before every write, so a
// slot listed as free earlier in the conversation can still be refused here.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// Request describes one booking attempt. Date is ISO ("2006-01-02"), Time is
// 24-hour "HH:MM" in the scheduling zone.
type Request struct {
	Date            string
	Time            string
	DurationMinutes int
	Title           string
	Description     string
}

// Result is the outcome of a successful booking.
type Result struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration"`
	Title           string `json:"title"`
	EventID         string `json:"event_id"`
	Link            string `json:"confirmation_link,omitempty"`
}

// SlotConflictError reports that the requested interval was occupied at
// commit time. It is actionable: callers suggest alternatives instead of a
// generic failure.
type SlotConflictError struct {
	Date string
	Time string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("booking: slot %s on %s is already booked", e.Time, e.Date)
}

// IsSlotConflict reports whether err is a slot conflict.
func IsSlotConflict(err error) bool {
	var conflict *SlotConflictError
	return errors.As(err, &conflict)
}

// Executor books appointments with a mandatory availability re-check.
type Executor struct {
	backend calendar.Backend
	loc     *time.Location
	logger  *logging.Logger
}

// NewExecutor creates a booking executor operating in loc.
func NewExecutor(backend calendar.Backend, loc *time.Location, logger *logging.Logger) *Executor {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Executor{backend: backend, loc: loc, logger: logger}
}

// Book re-checks the exact interval against the backend and commits the event
// only when it is still free. Listing and booking are never one atomic step --
// user think-time passes between them -- so this re-check closes most of the
// double-booking window.
func (e *Executor) Book(ctx context.Context, req Request) (Result, error) {
	start, end, err := e.interval(req)
	if err != nil {
		return Result{}, err
	}

	busy, err := e.backend.ListBusy(ctx, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("booking: availability re-check failed: %w", err)
	}
	if !availability.IsIntervalFree(start, end, busy) {
		e.logger.Info("booking: slot conflict at commit time", "date", req.Date, "time", req.Time)
		return Result{}, &SlotConflictError{Date: req.Date, Time: req.Time}
	}

	created, err := e.backend.CreateEvent(ctx, start, end, req.Title, req.Description)
	if err != nil {
		return Result{}, fmt.Errorf("booking: backend write failed: %w", err)
	}

	e.logger.Info("booking: event created",
		"event_id", created.EventID,
		"date", req.Date,
		"time", req.Time,
		"duration_minutes", req.DurationMinutes,
	)
	return Result{
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Title:           req.Title,
		EventID:         created.EventID,
		Link:            created.Link,
	}, nil
}

func (e *Executor) interval(req Request) (time.Time, time.Time, error) {
	if req.Date == "" || req.Time == "" {
		return time.Time{}, time.Time{}, errors.New("booking: date and time are required")
	}
	if req.DurationMinutes <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("booking: duration must be positive, got %d", req.DurationMinutes)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("booking: invalid date/time %q %q: %w", req.Date, req.Time, err)
	}
	return start, start.Add(time.Duration(req.DurationMinutes) * time.Minute), nil
}
