package dialogue

import (
	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/nlu"
)

// BookingInfo summarizes a confirmed booking inside an Outcome.
type BookingInfo struct {
	Booked          bool   `json:"booked"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration"`
	Title           string `json:"title"`
	EventLink       string `json:"event_link,omitempty"`
}

// Outcome is the terminal artifact of one message: the rendered reply plus
// the structured slot list and booking confirmation. It is always well-formed;
// failure paths fill ResponseText with a human-readable message instead of
// surfacing an error to the caller.
type Outcome struct {
	ResponseText   string                  `json:"response"`
	Intent         nlu.Intent              `json:"intent"`
	AvailableSlots []availability.TimeSlot `json:"available_slots"`
	Booking        *BookingInfo            `json:"booking_info,omitempty"`
}

func newOutcome(intent nlu.Intent, text string) Outcome {
	return Outcome{
		ResponseText:   text,
		Intent:         intent,
		AvailableSlots: []availability.TimeSlot{},
	}
}
