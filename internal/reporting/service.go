package reporting

import (
	"context"
	"errors"
	"time"

	"agent-console/internal/call"
	"agent-console/internal/status"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query immutable sources (call records, closed
// status segments) and must filter by agent.
type Repository interface {
	ListCallRecords(ctx context.Context, agentID string, from, to time.Time) ([]call.Record, error)
	ListClosedSegments(ctx context.Context, agentID string, from, to time.Time) ([]status.Segment, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) AgentSummary(ctx context.Context, req AgentSummaryRequest) (AgentSummary, error) {
	if req.AgentID == "" {
		return AgentSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return AgentSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return AgentSummary{}, errors.New("reporting: repository not configured")
	}

	recs, err := s.repo.ListCallRecords(ctx, req.AgentID, req.Range.From, req.Range.To)
	if err != nil {
		return AgentSummary{}, err
	}

	out := AgentSummary{AgentID: req.AgentID, StatusSeconds: make(map[string]int)}
	for _, r := range recs {
		out.TotalCalls++
		out.TotalTalkSeconds += r.DurationSeconds
		switch r.Outcome {
		case call.OutcomeAnswered:
			out.AnsweredCalls++
		case call.OutcomeDeclined:
			out.DeclinedCalls++
		case call.OutcomeMissed:
			out.MissedCalls++
		}
		switch r.Direction {
		case call.DirectionInbound:
			out.InboundCalls++
		case call.DirectionOutbound:
			out.OutboundCalls++
		}
	}

	segs, err := s.repo.ListClosedSegments(ctx, req.AgentID, req.Range.From, req.Range.To)
	if err != nil {
		return AgentSummary{}, err
	}
	for _, seg := range segs {
		out.StatusSeconds[string(seg.Status)] += seg.DurationSeconds
	}

	return out, nil
}
