package reporting

import "time"

// Range is a half-open reporting window [From, To).
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type AgentSummaryRequest struct {
	AgentID string `json:"agent_id"`
	Range   Range  `json:"range"`
}

// AgentSummary aggregates an agent's call log and closed status segments
// over a window. Built from immutable rows only; no state is mutated to
// produce it.
type AgentSummary struct {
	AgentID string `json:"agent_id"`

	TotalCalls    int `json:"total_calls"`
	AnsweredCalls int `json:"answered_calls"`
	DeclinedCalls int `json:"declined_calls"`
	MissedCalls   int `json:"missed_calls"`

	InboundCalls  int `json:"inbound_calls"`
	OutboundCalls int `json:"outbound_calls"`

	TotalTalkSeconds int `json:"total_talk_seconds"`

	// StatusSeconds is closed-segment time per status value.
	StatusSeconds map[string]int `json:"status_seconds"`
}
