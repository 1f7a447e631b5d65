// Package availability computes free appointment slots over a business-hours
// window, filtering against busy intervals from the calendar backend.
package availability

import (
	"fmt"
	"time"

	"github.com/bookwise-ai/bookwise/internal/calendar"
)

// BusinessHours bounds the daily scheduling window in local hours.
// Start is inclusive, End exclusive.
type BusinessHours struct {
	StartHour int
	EndHour   int
}

// TimeSlot is one bookable [Start, End) window. Display fields are 12-hour
// strings for rendering; Start/End carry the scheduling zone.
type TimeSlot struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DisplayStart string    `json:"display_start"` // e.g. "2:00 PM"
	DisplayEnd   string    `json:"display_end"`
	Start24      string    `json:"start_24"` // e.g. "14:00"
	End24        string    `json:"end_24"`
}

// Engine enumerates candidate slots at a fixed stride. All arithmetic happens
// in one configured location; conversion to backend zones is the caller's job.
type Engine struct {
	hours  BusinessHours
	stride time.Duration
	loc    *time.Location
}

// NewEngine builds an engine. A non-positive stride falls back to 30 minutes.
func NewEngine(hours BusinessHours, strideMinutes int, loc *time.Location) *Engine {
	if strideMinutes <= 0 {
		strideMinutes = 30
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{hours: hours, stride: time.Duration(strideMinutes) * time.Minute, loc: loc}
}

// Window returns the [start, end) business-hours window for an ISO date.
// Backends are queried over exactly this window.
func (e *Engine) Window(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("availability: invalid date %q: %w", date, err)
	}
	start := day.Add(time.Duration(e.hours.StartHour) * time.Hour)
	end := day.Add(time.Duration(e.hours.EndHour) * time.Hour)
	return start, end, nil
}

// FreeSlots enumerates every free slot of the given duration on date.
// Candidates begin at the window start and advance by the stride; a candidate
// is free iff it overlaps no busy interval (half-open semantics). The result
// is exhaustive and ascending; truncation for display is a caller concern.
func (e *Engine) FreeSlots(date string, durationMinutes int, busy []calendar.BusyInterval) ([]TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("availability: duration must be positive, got %d", durationMinutes)
	}
	windowStart, windowEnd, err := e.Window(date)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	slots := []TimeSlot{}
	for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(e.stride) {
		end := start.Add(duration)
		if isFree(start, end, busy) {
			slots = append(slots, newSlot(start, end))
		}
	}
	return slots, nil
}

// IsIntervalFree reports whether [start, end) overlaps none of busy.
func IsIntervalFree(start, end time.Time, busy []calendar.BusyInterval) bool {
	return isFree(start, end, busy)
}

func isFree(start, end time.Time, busy []calendar.BusyInterval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return false
		}
	}
	return true
}

func newSlot(start, end time.Time) TimeSlot {
	return TimeSlot{
		Start:        start,
		End:          end,
		DisplayStart: start.Format("3:04 PM"),
		DisplayEnd:   end.Format("3:04 PM"),
		Start24:      start.Format("15:04"),
		End24:        end.Format("15:04"),
	}
}
