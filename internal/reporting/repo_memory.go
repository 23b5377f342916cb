package reporting

import (
	"context"
	"sync"
	"time"

	"agent-console/internal/call"
	"agent-console/internal/status"
)

// MemoryRepo is an in-memory reporting source useful for tests.
type MemoryRepo struct {
	mu       sync.Mutex
	records  []call.Record
	segments []status.Segment
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) AddRecord(rec call.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *MemoryRepo) AddSegment(seg status.Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segments = append(r.segments, seg)
}

func (r *MemoryRepo) ListCallRecords(ctx context.Context, agentID string, from, to time.Time) ([]call.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call.Record
	for _, rec := range r.records {
		if rec.AgentID != agentID {
			continue
		}
		if rec.ReceivedAt.Before(from) || !rec.ReceivedAt.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *MemoryRepo) ListClosedSegments(ctx context.Context, agentID string, from, to time.Time) ([]status.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []status.Segment
	for _, seg := range r.segments {
		if seg.AgentID != agentID || seg.EndedAt == nil {
			continue
		}
		if seg.StartedAt.Before(from) || !seg.StartedAt.Before(to) {
			continue
		}
		out = append(out, seg)
	}
	return out, nil
}
