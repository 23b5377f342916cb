package status

import "time"

// Status is an agent working status. The nine values form a flat enum:
// any status may follow any other directly. The only forced transitions
// (to on_call and after_call) are driven by the call session, not here.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusOnCall     Status = "on_call"
	StatusBreak      Status = "break"
	StatusLunch      Status = "lunch"
	StatusPersonal   Status = "personal"
	StatusTechIssues Status = "tech_issues"
	StatusGoneHome   Status = "gone_home"
	StatusAfterCall  Status = "after_call"
	StatusOutBound   Status = "out_bound"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOnCall, StatusBreak, StatusLunch, StatusPersonal,
		StatusTechIssues, StatusGoneHome, StatusAfterCall, StatusOutBound:
		return true
	default:
		return false
	}
}

// Segment is a closed or open interval an agent spends in one status.
//
// Invariant: at most one open segment (EndedAt == nil) per agent.
// DurationSeconds is set only when the segment is closed, and records the
// tick count observed by the running session, not a wall-clock delta.
type Segment struct {
	ID      string `json:"id" db:"id"`
	AgentID string `json:"agent_id" db:"agent_id"`

	Status Status `json:"status" db:"status"`

	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	DurationSeconds int        `json:"duration_seconds" db:"duration_seconds"`
}
