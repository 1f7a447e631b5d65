// Package calendar defines the abstract calendar backend the scheduling core
// talks to, plus the in-memory and Google Calendar implementations.
package calendar

import (
	"context"
	"time"
)

// BusyInterval is one occupied [Start, End) window on the calendar.
// Intervals carry the backend's timezone; callers convert at the boundary.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the half-open interval [start, end) intersects b.
// Touching endpoints do not overlap: a slot ending exactly when a busy
// interval starts is free.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// CreatedEvent is the backend's reference for a successfully created event.
type CreatedEvent struct {
	EventID string `json:"event_id"`
	Link    string `json:"link,omitempty"`
}

// Backend is the calendar collaborator interface. ListBusy must return every
// event overlapping [start, end), in no particular order. CreateEvent must be
// atomic from the caller's perspective.
type Backend interface {
	ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error)
	CreateEvent(ctx context.Context, start, end time.Time, title, description string) (CreatedEvent, error)
}
