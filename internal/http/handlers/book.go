package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/bookinglog"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// BookHandler serves the direct booking endpoint for callers that already
// know the exact slot they want (no conversational extraction involved).
type BookHandler struct {
	executor        *booking.Executor
	log             *bookinglog.Store // nil disables booking log capture
	defaultDuration int
	defaultTitle    string
	logger          *logging.Logger
}

// NewBookHandler creates the direct booking handler. defaultDuration and
// defaultTitle fill in requests that omit them.
func NewBookHandler(executor *booking.Executor, log *bookinglog.Store, defaultDuration int, defaultTitle string, logger *logging.Logger) *BookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultDuration <= 0 {
		defaultDuration = 60
	}
	if defaultTitle == "" {
		defaultTitle = "Meeting"
	}
	return &BookHandler{
		executor:        executor,
		log:             log,
		defaultDuration: defaultDuration,
		defaultTitle:    defaultTitle,
		logger:          logger,
	}
}

type bookRequest struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM, 24-hour
	DurationMinutes int    `json:"duration_minutes"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	SessionID       string `json:"session_id"`
}

type bookResponse struct {
	Booked          bool   `json:"booked"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Title           string `json:"title"`
	EventID         string `json:"event_id"`
	EventLink       string `json:"event_link,omitempty"`
}

// HandleBook processes POST /api/book.
func (h *BookHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "date and time are required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = h.defaultDuration
	}
	if req.Title == "" {
		req.Title = h.defaultTitle
	}

	ctx := r.Context()
	res, err := h.executor.Book(ctx, booking.Request{
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Title:           req.Title,
		Description:     req.Description,
	})
	if err != nil {
		if booking.IsSlotConflict(err) {
			writeError(w, http.StatusConflict, "requested slot is already booked")
			return
		}
		h.logger.Error("book: booking failed", "date", req.Date, "time", req.Time, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.log != nil {
		if err := h.log.Record(ctx, req.SessionID, res); err != nil {
			h.logger.Warn("book: booking log failed", "event_id", res.EventID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, bookResponse{
		Booked:          true,
		Date:            res.Date,
		Time:            res.Time,
		DurationMinutes: res.DurationMinutes,
		Title:           res.Title,
		EventID:         res.EventID,
		EventLink:       res.Link,
	})
}

type bookingLogEntry struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
	Title           string    `json:"title"`
	EventID         string    `json:"event_id"`
	EventLink       string    `json:"event_link,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HandleRecentBookings processes GET /api/bookings, an operational read over
// the booking log, newest first. Requires the Postgres booking log.
func (h *BookHandler) HandleRecentBookings(w http.ResponseWriter, r *http.Request) {
	if h.log == nil {
		writeError(w, http.StatusServiceUnavailable, "booking log is not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	entries, err := h.log.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("book: booking log read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read bookings")
		return
	}

	out := make([]bookingLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, bookingLogEntry{
			ID:              e.ID,
			SessionID:       e.SessionID,
			Date:            e.Date,
			Time:            e.Time,
			DurationMinutes: e.DurationMinutes,
			Title:           e.Title,
			EventID:         e.EventID,
			EventLink:       e.EventLink,
			CreatedAt:       e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": out,
		"count":    len(out),
	})
}
