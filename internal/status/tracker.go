package status

import (
	"context"
	"log/slog"
	"time"
)

// Store is the persistence contract for status segments.
//
// Writes are treated as fire-and-forget by the Tracker: local state is
// updated optimistically and store failures are logged, never surfaced.
type Store interface {
	FindOpenSegment(ctx context.Context, agentID string) (Segment, bool, error)
	CreateSegment(ctx context.Context, agentID string, s Status, startedAt time.Time) (Segment, error)
	CloseSegment(ctx context.Context, id string, endedAt time.Time, durationSeconds int) error
}

// Tracker owns the single open status segment for one agent and its
// elapsed time.
//
// Not safe for concurrent use on its own; the owning session serializes
// all calls (see internal/session).
type Tracker struct {
	store Store
	log   *slog.Logger
	clock func() time.Time

	agentID string

	current       Status
	elapsed       int
	openSegmentID string
}

func NewTracker(agentID string, store Store, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		store:   store,
		log:     log,
		clock:   time.Now,
		agentID: agentID,
	}
}

// WithClock overrides the tracker clock. Test hook.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// Initialize restores the open segment from the store, or transitions into
// available as the initial status when none exists.
//
// Restored elapsed time is a wall-clock delta from the segment start, so a
// reload picks up where the previous session left off.
func (t *Tracker) Initialize(ctx context.Context) {
	seg, ok, err := t.store.FindOpenSegment(ctx, t.agentID)
	if err != nil {
		t.log.Error("status: open segment lookup failed", "agent_id", t.agentID, "err", err)
	}
	if ok {
		t.current = seg.Status
		t.openSegmentID = seg.ID
		t.elapsed = int(t.clock().Sub(seg.StartedAt) / time.Second)
		if t.elapsed < 0 {
			t.elapsed = 0
		}
		return
	}
	t.open(ctx, StatusAvailable)
}

// Transition closes the current segment and opens a new one as a single
// logical operation. It is a silent no-op before Initialize has produced
// an open segment; the UI cannot reach that window.
func (t *Tracker) Transition(ctx context.Context, next Status) {
	if t.openSegmentID == "" {
		t.log.Debug("status: transition before initialize ignored", "agent_id", t.agentID, "status", next)
		return
	}

	now := t.clock().UTC()

	// Close with the tracked tick count, not a recomputed wall-clock delta:
	// duration reflects ticks this session actually observed.
	if err := t.store.CloseSegment(ctx, t.openSegmentID, now, t.elapsed); err != nil {
		t.log.Error("status: segment close failed", "agent_id", t.agentID, "segment_id", t.openSegmentID, "err", err)
	}

	t.current = next
	t.open(ctx, next)
}

// Tick advances the elapsed counter by one second. Called once per second
// regardless of status.
func (t *Tracker) Tick() {
	t.elapsed++
}

func (t *Tracker) Current() Status { return t.current }

func (t *Tracker) Elapsed() int { return t.elapsed }

// Initialized reports whether an open segment exists locally.
func (t *Tracker) Initialized() bool { return t.openSegmentID != "" }

func (t *Tracker) open(ctx context.Context, s Status) {
	t.current = s
	t.elapsed = 0

	seg, err := t.store.CreateSegment(ctx, t.agentID, s, t.clock().UTC())
	if err != nil {
		// Optimistic local state: keep the previous segment id so a later
		// transition still has something to close.
		t.log.Error("status: segment create failed", "agent_id", t.agentID, "status", s, "err", err)
		return
	}
	t.openSegmentID = seg.ID
}
