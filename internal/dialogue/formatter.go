package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
)

// Slot buckets for display: Morning [00:00,12:00), Afternoon [12:00,17:00),
// Evening [17:00,24:00).
const (
	afternoonStartHour = 12
	eveningStartHour   = 17
)

// bucketSlots splits slots by local start hour.
func bucketSlots(slots []availability.TimeSlot) (morning, afternoon, evening []availability.TimeSlot) {
	for _, s := range slots {
		switch hour := s.Start.Hour(); {
		case hour < afternoonStartHour:
			morning = append(morning, s)
		case hour < eveningStartHour:
			afternoon = append(afternoon, s)
		default:
			evening = append(evening, s)
		}
	}
	return morning, afternoon, evening
}

// formatSlotList renders the availability reply: bucketed slots and a total.
// Zero slots yields an explicit fully-booked message, never a bare empty list.
func formatSlotList(date string, slots []availability.TimeSlot) string {
	if len(slots) == 0 {
		return fmt.Sprintf(
			"Sorry, no free time slots available for %s. You seem to be fully booked!\n\n"+
				"Try checking another date or ask for tomorrow's availability.",
			formatDateHuman(date))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your available time slots for %s:\n", formatDateHuman(date))

	morning, afternoon, evening := bucketSlots(slots)
	writeBucket(&b, "Morning", morning)
	writeBucket(&b, "Afternoon", afternoon)
	writeBucket(&b, "Evening", evening)

	fmt.Fprintf(&b, "\nTotal available slots: %d\n\nWhich time works best for you?", len(slots))
	return b.String()
}

func writeBucket(b *strings.Builder, label string, slots []availability.TimeSlot) {
	if len(slots) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d slots):\n", label, len(slots))
	for _, s := range slots {
		fmt.Fprintf(b, "• %s - %s\n", s.DisplayStart, s.DisplayEnd)
	}
}

// formatBookingConfirmation renders a successful booking.
func formatBookingConfirmation(res booking.Result) string {
	var b strings.Builder
	b.WriteString("Perfect! I've successfully booked your meeting:\n\n")
	fmt.Fprintf(&b, "Date: %s\n", formatDateHuman(res.Date))
	fmt.Fprintf(&b, "Time: %s\n", res.Time)
	fmt.Fprintf(&b, "Duration: %d minutes\n", res.DurationMinutes)
	fmt.Fprintf(&b, "Title: %s\n", res.Title)
	if res.Link != "" {
		fmt.Fprintf(&b, "\nView in calendar: %s\n", res.Link)
	}
	b.WriteString("\nYour appointment has been confirmed! 🎉")
	return b.String()
}

// formatConflict renders a slot-conflict failure with actionable
// alternatives for the same date. The listed preview is bounded; the full
// list travels in the structured payload.
func formatConflict(date, clock string, alternatives []availability.TimeSlot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sorry, %s on %s is already booked. Let me show you some alternatives:", clock, date)

	if len(alternatives) == 0 {
		b.WriteString("\n\nNo other slots are free that day. Would you like to try a different date?")
		return b.String()
	}

	fmt.Fprintf(&b, "\n\nHere are all %d available times:", len(alternatives))
	const previewLimit = 15
	for i, s := range alternatives {
		if i == previewLimit {
			fmt.Fprintf(&b, "\n... and %d more slots available!", len(alternatives)-previewLimit)
			break
		}
		fmt.Fprintf(&b, "\n• %s - %s", s.DisplayStart, s.DisplayEnd)
	}
	return b.String()
}

// formatBookingPrompt asks for the details a booking request was missing.
func formatBookingPrompt() string {
	return "I'd be happy to help you schedule a meeting! Could you please specify:\n" +
		"• What date? (today, tomorrow, or a specific date)\n" +
		"• What time? (e.g., 2 PM, 14:00)\n" +
		"• How long? (30 minutes, 1 hour, etc.)"
}

// formatCancelReply answers cancellation requests, which this assistant does
// not automate.
func formatCancelReply() string {
	return "I can't cancel appointments yet. Please remove the event directly from your calendar, " +
		"and I can help you find a new time afterwards."
}

// formatGeneralChat is the fallback capability blurb.
func formatGeneralChat() string {
	return "I'm your calendar assistant! I can help you:\n" +
		"• Check availability (conflict-free slots only)\n" +
		"• Schedule meetings\n" +
		"• Book appointments\n\n" +
		"What would you like to do?"
}

// formatInternalError is the generic apology for backend failures. Details
// stay in the logs.
func formatInternalError() string {
	return "Sorry, I ran into a problem talking to the calendar. Nothing was booked. Please try again in a moment."
}

// formatDateHuman renders an ISO date like "Friday, June 27, 2025". Falls
// back to the raw string if it does not parse.
func formatDateHuman(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}
