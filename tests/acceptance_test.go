// Package tests contains end-to-end acceptance tests that exercise the full
// HTTP stack: router, handlers, dialogue state machine, availability engine
// and booking executor against an in-memory calendar.
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookwise-ai/bookwise/internal/api/router"
	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/internal/dialogue"
	httphandlers "github.com/bookwise-ai/bookwise/internal/http/handlers"
	"github.com/bookwise-ai/bookwise/internal/nlu"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

type chatReply struct {
	SessionID      string                  `json:"session_id"`
	Response       string                  `json:"response"`
	Intent         string                  `json:"intent"`
	AvailableSlots []availability.TimeSlot `json:"available_slots"`
	Booking        *dialogue.BookingInfo   `json:"booking_info"`
}

func newStack(t *testing.T) (http.Handler, *calendar.MemoryBackend) {
	t.Helper()
	logger := logging.New("error")
	backend := calendar.NewMemoryBackend()
	executor := booking.NewExecutor(backend, time.UTC, logger)
	svc := dialogue.NewService(dialogue.Config{
		Extractor: nlu.NewExtractor(time.UTC, 60, "Meeting"),
		Engine:    availability.NewEngine(availability.BusinessHours{StartHour: 9, EndHour: 21}, 30, time.UTC),
		Executor:  executor,
		Backend:   backend,
		Logger:    logger,
	})
	r := router.New(&router.Config{
		Logger: logger,
		Chat:   httphandlers.NewChatHandler(svc, nil, logger),
		Book:   httphandlers.NewBookHandler(executor, nil, 60, "Meeting", logger),
		Health: httphandlers.NewHealthHandler("test"),
	})
	return r, backend
}

func sendChat(t *testing.T, r http.Handler, sessionID, message string) chatReply {
	t.Helper()
	body, err := json.Marshal(map[string]string{"message": message, "session_id": sessionID})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var reply chatReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	return reply
}

func TestAcceptance_AvailabilityOnEmptyCalendar(t *testing.T) {
	r, _ := newStack(t)

	reply := sendChat(t, r, "sess-a", "What times are available 2025-06-26?")

	if reply.Intent != "check_availability" {
		t.Fatalf("expected check_availability intent, got %q", reply.Intent)
	}
	// 9:00-21:00 window, 30 minute stride, 60 minute slots: starts 09:00
	// through 20:00 inclusive, 23 candidates.
	if len(reply.AvailableSlots) != 23 {
		t.Fatalf("expected 23 free slots, got %d", len(reply.AvailableSlots))
	}
	if reply.AvailableSlots[0].Start24 != "09:00" {
		t.Fatalf("expected first slot at 09:00, got %q", reply.AvailableSlots[0].Start24)
	}
	last := reply.AvailableSlots[len(reply.AvailableSlots)-1]
	if last.Start24 != "20:00" {
		t.Fatalf("expected last slot at 20:00, got %q", last.Start24)
	}
	if reply.Booking != nil {
		t.Fatalf("availability check must not book anything")
	}
}

func TestAcceptance_BookThenConflictThenAlternatives(t *testing.T) {
	r, backend := newStack(t)

	booked := sendChat(t, r, "sess-b", "Book a meeting 2025-06-26 at 2pm")
	if booked.Booking == nil || !booked.Booking.Booked {
		t.Fatalf("expected a confirmed booking, got %+v", booked.Booking)
	}
	if booked.Booking.Date != "2025-06-26" || booked.Booking.Time != "14:00" {
		t.Fatalf("unexpected booking slot %s %s", booked.Booking.Date, booked.Booking.Time)
	}

	busy, err := backend.ListBusy(context.Background(),
		time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list busy: %v", err)
	}
	if len(busy) != 1 {
		t.Fatalf("expected exactly one calendar event, got %d", len(busy))
	}

	// The same slot again must conflict without writing a second event.
	conflict := sendChat(t, r, "sess-b2", "Book a meeting 2025-06-26 at 2pm")
	if conflict.Booking != nil {
		t.Fatalf("conflicting request must not produce a booking")
	}
	for _, s := range conflict.AvailableSlots {
		if s.Start24 == "14:00" {
			t.Fatalf("alternatives must not include the conflicting slot")
		}
	}
	if len(conflict.AvailableSlots) == 0 {
		t.Fatalf("expected alternative slots after conflict")
	}

	busy, err = backend.ListBusy(context.Background(),
		time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list busy: %v", err)
	}
	if len(busy) != 1 {
		t.Fatalf("conflict must not create an event, got %d events", len(busy))
	}
}

func TestAcceptance_WeekdayResolvesForward(t *testing.T) {
	r, _ := newStack(t)

	reply := sendChat(t, r, "sess-c", "Are you free this friday?")

	if reply.Intent != "check_availability" {
		t.Fatalf("expected check_availability intent, got %q", reply.Intent)
	}
	if len(reply.AvailableSlots) == 0 {
		t.Fatalf("expected free slots for the upcoming friday")
	}

	// Every returned slot falls on the upcoming Friday, strictly after today.
	now := time.Now().UTC()
	wantDate := nlu.NextWeekday(now, time.Friday).Format("2006-01-02")
	for _, s := range reply.AvailableSlots {
		if s.Start.Format("2006-01-02") != wantDate {
			t.Fatalf("expected slots on %s, got %s", wantDate, s.Start.Format("2006-01-02"))
		}
	}
	if !nlu.NextWeekday(now, time.Friday).After(now.Truncate(24 * time.Hour)) {
		t.Fatalf("weekday resolution must always land in the future")
	}
}

func TestAcceptance_DirectBookingEndpoint(t *testing.T) {
	r, backend := newStack(t)
	start := time.Date(2025, 6, 26, 15, 0, 0, 0, time.UTC)
	backend.Seed(start, start.Add(time.Hour), "Existing")

	post := func(tm string) int {
		body, _ := json.Marshal(map[string]any{"date": "2025-06-26", "time": tm})
		req := httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("15:30"); code != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping slot, got %d", code)
	}
	if code := post("16:00"); code != http.StatusOK {
		t.Fatalf("expected 200 for adjacent slot, got %d", code)
	}
}

func TestAcceptance_FullyBookedDay(t *testing.T) {
	r, backend := newStack(t)
	day := time.Date(2025, 6, 26, 9, 0, 0, 0, time.UTC)
	backend.Seed(day, day.Add(12*time.Hour), "All-day block")

	reply := sendChat(t, r, "sess-d", "When are you available 2025-06-26?")
	if len(reply.AvailableSlots) != 0 {
		t.Fatalf("expected no slots on a fully booked day, got %d", len(reply.AvailableSlots))
	}
	if reply.Response == "" {
		t.Fatalf("expected an explanatory reply for a fully booked day")
	}
}

func TestAcceptance_GeneralChatDoesNotTouchCalendar(t *testing.T) {
	r, backend := newStack(t)

	reply := sendChat(t, r, "sess-e", "hello, what can you do?")
	if reply.Intent != "general_chat" {
		t.Fatalf("expected general_chat intent, got %q", reply.Intent)
	}

	busy, err := backend.ListBusy(context.Background(),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list busy: %v", err)
	}
	if len(busy) != 0 {
		t.Fatalf("general chat must not create events, got %d", len(busy))
	}
}

func TestAcceptance_ConflictMessageNamesSlot(t *testing.T) {
	r, backend := newStack(t)
	start := time.Date(2025, 6, 26, 14, 0, 0, 0, time.UTC)
	backend.Seed(start, start.Add(time.Hour), "Standup")

	reply := sendChat(t, r, "sess-f", "Book a call 2025-06-26 at 2pm")
	if !strings.Contains(reply.Response, "14:00") {
		t.Fatalf("conflict reply should name the requested time, got %q", reply.Response)
	}
}
