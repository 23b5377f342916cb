package status

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory segment store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	segments []Segment

	// FailCreate and FailClose inject write failures for fire-and-forget tests.
	FailCreate error
	FailClose  error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (r *MemoryStore) FindOpenSegment(ctx context.Context, agentID string) (Segment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.segments {
		if s.AgentID == agentID && s.EndedAt == nil {
			return s, true, nil
		}
	}
	return Segment{}, false, nil
}

func (r *MemoryStore) CreateSegment(ctx context.Context, agentID string, status Status, startedAt time.Time) (Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return Segment{}, r.FailCreate
	}
	s := Segment{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Status:    status,
		StartedAt: startedAt,
	}
	r.segments = append(r.segments, s)
	return s, nil
}

func (r *MemoryStore) CloseSegment(ctx context.Context, id string, endedAt time.Time, durationSeconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailClose != nil {
		return r.FailClose
	}
	for i := range r.segments {
		if r.segments[i].ID == id && r.segments[i].EndedAt == nil {
			t := endedAt
			r.segments[i].EndedAt = &t
			r.segments[i].DurationSeconds = durationSeconds
		}
	}
	return nil
}

// Seed inserts a segment directly, for restore-path tests.
func (r *MemoryStore) Seed(s Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.segments = append(r.segments, s)
}

// Segments returns a copy of all stored segments.
func (r *MemoryStore) Segments() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// OpenCount reports how many open segments exist for the agent.
func (r *MemoryStore) OpenCount(agentID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.segments {
		if s.AgentID == agentID && s.EndedAt == nil {
			n++
		}
	}
	return n
}
