// Package nlu provides rule-based intent and entity extraction for
// scheduling messages. Extraction is total: every input yields a usable
// Entities value, with defaults filled in where the text is silent.
package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Intent classifies what the user is asking for.
type Intent string

const (
	IntentBookAppointment   Intent = "book_appointment"
	IntentCheckAvailability Intent = "check_availability"
	IntentCancelAppointment Intent = "cancel_appointment"
	IntentGeneralChat       Intent = "general_chat"
)

// Entities is the structured reading of one chat message. Date is always a
// concrete ISO-8601 calendar date; Time is empty when the message named no
// specific time.
type Entities struct {
	Intent          Intent `json:"intent"`
	Date            string `json:"date"`            // "2006-01-02"
	Time            string `json:"time,omitempty"`  // "15:04", 24-hour
	DurationMinutes int    `json:"duration_minutes"`
	MeetingTitle    string `json:"meeting_title"`
}

// HasTime reports whether the message carried a specific clock time.
func (e Entities) HasTime() bool { return e.Time != "" }

// Extractor turns free text into Entities. It is stateless and safe for
// concurrent use.
type Extractor struct {
	loc             *time.Location
	defaultDuration int
	defaultTitle    string
}

// NewExtractor builds an extractor resolving relative dates in loc.
func NewExtractor(loc *time.Location, defaultDurationMinutes int, defaultTitle string) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 60
	}
	if defaultTitle == "" {
		defaultTitle = "Meeting"
	}
	return &Extractor{loc: loc, defaultDuration: defaultDurationMinutes, defaultTitle: defaultTitle}
}

var (
	bookKeywords   = []string{"book", "schedule", "meeting", "appointment", "call"}
	checkKeywords  = []string{"available", "free", "availability", "check", "when"}
	cancelKeywords = []string{"cancel", "delete", "remove"}

	weekdayRE  = regexp.MustCompile(`\b(?:this\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	todayRE    = regexp.MustCompile(`\btoday\b`)
	tomorrowRE = regexp.MustCompile(`\btomorrow\b`)
	nextWeekRE = regexp.MustCompile(`\bnext week\b`)
	isoDateRE  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	usDateRE   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	clockAmPmRE = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)\b`)
	hourAmPmRE  = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	clock24RE   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

	durationRE = regexp.MustCompile(`\b(\d+)\s*(hours?|hrs?|minutes?|mins?)\b`)
)

var weekdayNumbers = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Extract parses text relative to the current clock.
func (x *Extractor) Extract(text string) Entities {
	return x.ExtractAt(text, time.Now().In(x.loc))
}

// ExtractAt parses text with an explicit "now", which tests use to pin dates.
func (x *Extractor) ExtractAt(text string, now time.Time) Entities {
	lower := strings.ToLower(text)
	return Entities{
		Intent:          classifyIntent(lower),
		Date:            x.extractDate(lower, now),
		Time:            extractTime(lower),
		DurationMinutes: x.extractDuration(lower),
		MeetingTitle:    x.defaultTitle,
	}
}

// classifyIntent matches keyword groups in fixed priority order; the first
// group with a hit wins.
func classifyIntent(lower string) Intent {
	if containsAny(lower, bookKeywords) {
		return IntentBookAppointment
	}
	if containsAny(lower, checkKeywords) {
		return IntentCheckAvailability
	}
	if containsAny(lower, cancelKeywords) {
		return IntentCancelAppointment
	}
	return IntentGeneralChat
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// extractDate resolves the first date expression found, checked in priority
// order. Falls back to today's date when nothing date-like appears.
func (x *Extractor) extractDate(lower string, now time.Time) string {
	today := now.In(x.loc)

	if todayRE.MatchString(lower) {
		return formatDate(today)
	}
	if tomorrowRE.MatchString(lower) {
		return formatDate(today.AddDate(0, 0, 1))
	}
	if m := weekdayRE.FindStringSubmatch(lower); m != nil {
		return formatDate(NextWeekday(today, weekdayNumbers[m[1]]))
	}
	if nextWeekRE.MatchString(lower) {
		return formatDate(today.AddDate(0, 0, 7))
	}
	if m := isoDateRE.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	if m := usDateRE.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}
	return formatDate(today)
}

// NextWeekday returns the next occurrence of target strictly after today:
// when today already is the target weekday, it rolls a full week forward.
// Same-day matches are deliberately not treated as "this <weekday>".
func NextWeekday(today time.Time, target time.Weekday) time.Time {
	daysAhead := int(target) - int(today.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return today.AddDate(0, 0, daysAhead)
}

// extractTime finds the first clock-time expression, normalized to 24-hour
// "HH:MM". Returns "" when the message names no time.
func extractTime(lower string) string {
	if m := clockAmPmRE.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if t, ok := normalizeClock(hour, minute, m[3]); ok {
			return t
		}
	}
	if m := hourAmPmRE.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if t, ok := normalizeClock(hour, 0, m[2]); ok {
			return t
		}
	}
	if m := clock24RE.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if t, ok := normalizeClock(hour, minute, ""); ok {
			return t
		}
	}
	return ""
}

// normalizeClock converts a possibly 12-hour reading to 24-hour form.
// 12 AM maps to 00:00 and 12 PM stays 12:00.
func normalizeClock(hour, minute int, meridiem string) (string, bool) {
	switch meridiem {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// extractDuration reads "<n> hour(s)/hr(s)/minute(s)/min(s)".
func (x *Extractor) extractDuration(lower string) int {
	m := durationRE.FindStringSubmatch(lower)
	if m == nil {
		return x.defaultDuration
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return x.defaultDuration
	}
	if strings.HasPrefix(m[2], "hour") || strings.HasPrefix(m[2], "hr") {
		return value * 60
	}
	return value
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
