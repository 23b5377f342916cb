package call

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryLog is an in-memory call log useful for tests.
// It is not intended for production use.
type MemoryLog struct {
	mu      sync.Mutex
	records []Record

	// FailCreate and FailUpdate inject write failures for fire-and-forget tests.
	FailCreate error
	FailUpdate error
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (r *MemoryLog) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return Record{}, r.FailCreate
	}
	rec.ID = uuid.NewString()
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *MemoryLog) UpdateRecordDuration(ctx context.Context, id string, durationSeconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].DurationSeconds = durationSeconds
		}
	}
	return nil
}

func (r *MemoryLog) ListRecent(ctx context.Context, agentID string, limit int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.records {
		if rec.AgentID == agentID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Records returns a copy of all stored records.
func (r *MemoryLog) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
