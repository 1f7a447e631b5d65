// Package dialogue routes extracted scheduling intents through a small
// finite-state machine and assembles the final outcome for the caller.
package dialogue

import "github.com/bookwise-ai/bookwise/internal/nlu"

// State names one node of the dialogue graph.
type State string

const (
	StateExtractIntent     State = "extract_intent"
	StateCheckAvailability State = "check_availability"
	StateBookDirectly      State = "book_directly"
	StateBookNow           State = "book_now"
	StateShowSlots         State = "show_slots"
	StateGenerateResponse  State = "generate_response"
	StateHandleError       State = "handle_error"
)

// routeAfterExtract decides the edge out of ExtractIntent. Extraction is
// total today, but the error edge stays so a fallible extractor can slot in.
func routeAfterExtract(ents nlu.Entities, extractErr error) State {
	if extractErr != nil {
		return StateHandleError
	}
	switch ents.Intent {
	case nlu.IntentCheckAvailability:
		return StateCheckAvailability
	case nlu.IntentBookAppointment:
		if ents.Date != "" && ents.HasTime() {
			// Fully specified request: skip the availability round-trip and
			// let the executor's re-check catch conflicts.
			return StateBookDirectly
		}
		return StateCheckAvailability
	default:
		return StateGenerateResponse
	}
}

// routeAfterAvailability decides the edge out of CheckAvailability.
func routeAfterAvailability(ents nlu.Entities, slotCount int, fetchErr error) State {
	if fetchErr != nil {
		return StateHandleError
	}
	if ents.Intent == nlu.IntentBookAppointment && ents.HasTime() && slotCount > 0 {
		return StateBookNow
	}
	return StateShowSlots
}
