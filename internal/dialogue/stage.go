// Package dialogue implements the multi-turn booking conversation: a
// session-scoped state machine that walks a user from test selection
// through contact details to a confirmed booking.
package dialogue

// Stage is where a chat session currently sits in the booking flow.
type Stage string

const (
	// StageIdle means no booking flow is in progress.
	StageIdle Stage = "IDLE"
	// StageTestSelected means a test is chosen and details are pending.
	StageTestSelected Stage = "TEST_SELECTED"
	// StageDetailsCollected means details are saved and a time is pending.
	StageDetailsCollected Stage = "DETAILS_COLLECTED"
	// StageBooked means the booking was just confirmed.
	StageBooked Stage = "BOOKED"
	// StageCancelled means the user abandoned the flow.
	StageCancelled Stage = "CANCELLED"
	// StageExpired means the session state aged out mid-flow.
	StageExpired Stage = "EXPIRED"
)

// StageResult is what one chat turn produces. Handlers return it
// explicitly so callers never have to sniff the message text.
type StageResult struct {
	Stage       Stage    `json:"stage"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}
