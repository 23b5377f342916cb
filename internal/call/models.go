package call

import "time"

// Direction classifies who initiated the call.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Outcome is the terminal classification of a call attempt.
//
// Invariant: answered records are the only ones that ever carry a nonzero
// duration; declined and missed records stay at zero forever.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeDeclined Outcome = "declined"
	OutcomeMissed   Outcome = "missed"
)

// Record is one row of the agent's call log.
//
// Lifecycle: created the instant a call is answered, declined or missed,
// with the final outcome fixed at creation time. Only the answered
// duration is back-filled when the call ends.
type Record struct {
	ID      string `json:"id" db:"id"`
	AgentID string `json:"agent_id" db:"agent_id"`

	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Direction   Direction `json:"direction" db:"direction"`
	Outcome     Outcome   `json:"outcome" db:"outcome"`

	ReceivedAt      time.Time `json:"received_at" db:"received_at"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
}

// State is the call-session state for one agent.
//
// Inbound path: idle -> ringing -> active -> idle (ringing may fall back
// to idle on decline/miss/withdraw). Outbound path: idle -> active -> idle.
type State string

const (
	StateIdle    State = "idle"
	StateRinging State = "ringing"
	StateActive  State = "active"
)
