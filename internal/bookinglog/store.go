// Package bookinglog persists an append-only record of confirmed bookings to
// PostgreSQL. The calendar backend stays the source of truth; this log exists
// for reporting and support lookups.
package bookinglog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookwise-ai/bookwise/internal/booking"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Entry is one logged booking.
type Entry struct {
	ID              string
	SessionID       string
	Date            string
	Time            string
	DurationMinutes int
	Title           string
	EventID         string
	EventLink       string
	CreatedAt       time.Time
}

// Store writes booking records to Postgres.
type Store struct {
	db db
}

// NewStore builds a Postgres-backed booking log.
func NewStore(db db) *Store {
	if db == nil {
		panic("bookinglog: db cannot be nil")
	}
	return &Store{db: db}
}

// Record inserts one confirmed booking.
func (s *Store) Record(ctx context.Context, sessionID string, res booking.Result) error {
	if res.EventID == "" {
		return errors.New("bookinglog: event id required")
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, session_id, booked_date, booked_time, duration_minutes,
			title, event_id, event_link, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, uuid.NewString(), sessionID, res.Date, res.Time, res.DurationMinutes,
		res.Title, res.EventID, res.Link, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("bookinglog: failed to insert booking: %w", err)
	}
	return nil
}

// ListRecent returns the newest bookings, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, booked_date, booked_time, duration_minutes,
		       title, event_id, event_link, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("bookinglog: failed to query bookings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Date, &e.Time, &e.DurationMinutes,
			&e.Title, &e.EventID, &e.EventLink, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookinglog: failed to scan booking: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookinglog: row iteration failed: %w", err)
	}
	return entries, nil
}
