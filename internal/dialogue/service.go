package dialogue

import (
	"context"
	"time"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/internal/nlu"
	"github.com/bookwise-ai/bookwise/internal/observability/metrics"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// BookingRecorder persists confirmed bookings. Optional collaborator.
type BookingRecorder interface {
	Record(ctx context.Context, sessionID string, res booking.Result) error
}

// BookingNotifier announces confirmed bookings (e.g. email to the calendar
// owner). Optional collaborator.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, res booking.Result) error
}

// Config wires the dialogue service's collaborators. Extractor, Engine,
// Executor and Backend are required; the rest are optional.
type Config struct {
	Extractor *nlu.Extractor
	Engine    *availability.Engine
	Executor  *booking.Executor
	Backend   calendar.Backend
	Logger    *logging.Logger
	Metrics   *metrics.DialogueMetrics
	Recorder  BookingRecorder
	Notifier  BookingNotifier
}

// Service runs one message through the dialogue state machine. It keeps no
// cross-request state; any multi-turn memory lives with the caller.
type Service struct {
	extractor *nlu.Extractor
	engine    *availability.Engine
	executor  *booking.Executor
	backend   calendar.Backend
	logger    *logging.Logger
	metrics   *metrics.DialogueMetrics
	recorder  BookingRecorder
	notifier  BookingNotifier
}

// NewService creates a dialogue service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		extractor: cfg.Extractor,
		engine:    cfg.Engine,
		executor:  cfg.Executor,
		backend:   cfg.Backend,
		logger:    logger,
		metrics:   cfg.Metrics,
		recorder:  cfg.Recorder,
		notifier:  cfg.Notifier,
	}
}

// HandleMessage processes one inbound chat message and always returns a
// well-formed outcome; backend failures become apology outcomes, never
// errors. The only side effect is the conditional calendar write on the
// booking paths.
func (s *Service) HandleMessage(ctx context.Context, text, sessionID string) Outcome {
	log := s.logger.With("session_id", sessionID)
	ents := s.extractor.Extract(text)
	log.Info("dialogue: message extracted",
		"intent", ents.Intent,
		"date", ents.Date,
		"time", ents.Time,
		"duration_minutes", ents.DurationMinutes,
	)

	var out Outcome
	var label string
	switch routeAfterExtract(ents, nil) {
	case StateBookDirectly:
		out, label = s.book(ctx, log, sessionID, ents)
	case StateCheckAvailability:
		out, label = s.availabilityFlow(ctx, log, sessionID, ents)
	case StateHandleError:
		out, label = newOutcome(ents.Intent, formatInternalError()), "error"
	default:
		out, label = s.chat(ents)
	}

	s.metrics.ObserveMessage(string(ents.Intent), label)
	return out
}

// availabilityFlow fetches busy intervals, computes free slots and routes to
// either direct booking or slot presentation.
func (s *Service) availabilityFlow(ctx context.Context, log *logging.Logger, sessionID string, ents nlu.Entities) (Outcome, string) {
	started := time.Now()
	slots, err := s.freeSlots(ctx, ents.Date, ents.DurationMinutes)
	s.metrics.ObserveSlotComputation(time.Since(started).Seconds())

	switch routeAfterAvailability(ents, len(slots), err) {
	case StateHandleError:
		log.Error("dialogue: availability fetch failed", "date", ents.Date, "error", err)
		return newOutcome(ents.Intent, formatInternalError()), "error"

	case StateBookNow:
		// The requested time is in scope; the executor re-checks the exact
		// interval before committing.
		return s.book(ctx, log, sessionID, ents)

	default: // StateShowSlots
		text := formatSlotList(ents.Date, slots)
		if ents.Intent == nlu.IntentBookAppointment && !ents.HasTime() {
			text = formatBookingPrompt() + "\n\n" + text
		}
		out := newOutcome(ents.Intent, text)
		out.AvailableSlots = slots
		return out, "slots"
	}
}

// book commits the fully specified request and renders the result. On a slot
// conflict the reply carries alternatives for the same date.
func (s *Service) book(ctx context.Context, log *logging.Logger, sessionID string, ents nlu.Entities) (Outcome, string) {
	res, err := s.executor.Book(ctx, booking.Request{
		Date:            ents.Date,
		Time:            ents.Time,
		DurationMinutes: ents.DurationMinutes,
		Title:           ents.MeetingTitle,
		Description:     "Scheduled via Bookwise assistant",
	})
	if err != nil {
		if booking.IsSlotConflict(err) {
			s.metrics.ObserveBooking("conflict")
			alternatives := s.alternativesFor(ctx, ents)
			out := newOutcome(ents.Intent, formatConflict(ents.Date, ents.Time, alternatives))
			out.AvailableSlots = alternatives
			return out, "conflict"
		}
		s.metrics.ObserveBooking("failed")
		log.Error("dialogue: booking failed", "date", ents.Date, "time", ents.Time, "error", err)
		return newOutcome(ents.Intent, formatInternalError()), "error"
	}

	s.metrics.ObserveBooking("booked")
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, sessionID, res); err != nil {
			log.Error("dialogue: booking record failed", "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, res); err != nil {
			log.Error("dialogue: booking notification failed", "error", err)
		}
	}

	out := newOutcome(ents.Intent, formatBookingConfirmation(res))
	out.Booking = &BookingInfo{
		Booked:          true,
		Date:            res.Date,
		Time:            res.Time,
		DurationMinutes: res.DurationMinutes,
		Title:           res.Title,
		EventLink:       res.Link,
	}
	return out, "booked"
}

func (s *Service) chat(ents nlu.Entities) (Outcome, string) {
	if ents.Intent == nlu.IntentCancelAppointment {
		return newOutcome(ents.Intent, formatCancelReply()), "chat"
	}
	return newOutcome(ents.Intent, formatGeneralChat()), "chat"
}

// freeSlots fetches busy intervals over the business window and enumerates
// free slots of the requested duration.
func (s *Service) freeSlots(ctx context.Context, date string, durationMinutes int) ([]availability.TimeSlot, error) {
	windowStart, windowEnd, err := s.engine.Window(date)
	if err != nil {
		return nil, err
	}
	busy, err := s.backend.ListBusy(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return s.engine.FreeSlots(date, durationMinutes, busy)
}

// alternativesFor lists same-date alternatives after a conflict. Best-effort:
// a fetch failure degrades to an empty list, the conflict message still goes
// out.
func (s *Service) alternativesFor(ctx context.Context, ents nlu.Entities) []availability.TimeSlot {
	slots, err := s.freeSlots(ctx, ents.Date, ents.DurationMinutes)
	if err != nil {
		s.logger.Warn("dialogue: alternative lookup failed", "date", ents.Date, "error", err)
		return nil
	}
	return slots
}
