package status

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestInitialize_NoOpenSegmentStartsAvailable(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker("agent-1", store, nil)

	tr.Initialize(context.Background())

	if tr.Current() != StatusAvailable {
		t.Fatalf("expected available, got %s", tr.Current())
	}
	if tr.Elapsed() != 0 {
		t.Fatalf("expected elapsed 0, got %d", tr.Elapsed())
	}
	if store.OpenCount("agent-1") != 1 {
		t.Fatalf("expected one open segment, got %d", store.OpenCount("agent-1"))
	}
}

func TestInitialize_RestoresOpenSegmentWithWallClockElapsed(t *testing.T) {
	store := NewMemoryStore()
	started := time.Unix(1700000000, 0).UTC()
	store.Seed(Segment{AgentID: "agent-1", Status: StatusBreak, StartedAt: started})

	tr := NewTracker("agent-1", store, nil).WithClock(fixedClock(started.Add(90 * time.Second)))
	tr.Initialize(context.Background())

	if tr.Current() != StatusBreak {
		t.Fatalf("expected break, got %s", tr.Current())
	}
	if tr.Elapsed() != 90 {
		t.Fatalf("expected elapsed 90, got %d", tr.Elapsed())
	}
	if store.OpenCount("agent-1") != 1 {
		t.Fatalf("restore must not create a new segment")
	}
}

func TestTransition_AtMostOneOpenSegment(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker("agent-1", store, nil)
	tr.Initialize(context.Background())

	seq := []Status{StatusBreak, StatusLunch, StatusAvailable, StatusGoneHome, StatusAvailable}
	for _, s := range seq {
		tr.Transition(context.Background(), s)
		if store.OpenCount("agent-1") != 1 {
			t.Fatalf("after transition to %s: %d open segments", s, store.OpenCount("agent-1"))
		}
		if tr.Elapsed() != 0 {
			t.Fatalf("elapsed must reset on transition, got %d", tr.Elapsed())
		}
	}
	if got := len(store.Segments()); got != len(seq)+1 {
		t.Fatalf("expected %d segments total, got %d", len(seq)+1, got)
	}
}

func TestTick_IncrementsByExactlyN(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker("agent-1", store, nil)
	tr.Initialize(context.Background())

	for i := 0; i < 42; i++ {
		tr.Tick()
	}
	if tr.Elapsed() != 42 {
		t.Fatalf("expected 42, got %d", tr.Elapsed())
	}
}

func TestTransition_ClosesWithTrackedTicksNotWallClock(t *testing.T) {
	store := NewMemoryStore()
	started := time.Unix(1700000000, 0).UTC()
	tr := NewTracker("agent-1", store, nil).WithClock(fixedClock(started))
	tr.Initialize(context.Background())

	// Only 3 ticks observed, even though the clock later jumps an hour.
	tr.Tick()
	tr.Tick()
	tr.Tick()
	tr.WithClock(fixedClock(started.Add(time.Hour)))

	tr.Transition(context.Background(), StatusBreak)

	var closed Segment
	var found bool
	for _, s := range store.Segments() {
		if s.EndedAt != nil {
			closed = s
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected a closed segment")
	}
	if closed.DurationSeconds != 3 {
		t.Fatalf("expected closed duration 3 (observed ticks), got %d", closed.DurationSeconds)
	}
}

func TestTransition_BeforeInitializeIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker("agent-1", store, nil)

	tr.Transition(context.Background(), StatusBreak)

	if len(store.Segments()) != 0 {
		t.Fatalf("expected no segments, got %d", len(store.Segments()))
	}
	if tr.Initialized() {
		t.Fatalf("expected uninitialized tracker")
	}
}

func TestTransition_StoreFailureKeepsOptimisticState(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker("agent-1", store, nil)
	tr.Initialize(context.Background())

	store.FailCreate = errors.New("store down")
	store.FailClose = errors.New("store down")

	tr.Transition(context.Background(), StatusLunch)

	// Local state moves on even though both writes failed.
	if tr.Current() != StatusLunch {
		t.Fatalf("expected lunch, got %s", tr.Current())
	}
	if tr.Elapsed() != 0 {
		t.Fatalf("expected elapsed reset, got %d", tr.Elapsed())
	}
	if !tr.Initialized() {
		t.Fatalf("tracker must keep the previous segment id for a later close")
	}
}

func TestStatus_IsValid(t *testing.T) {
	all := []Status{
		StatusAvailable, StatusOnCall, StatusBreak, StatusLunch, StatusPersonal,
		StatusTechIssues, StatusGoneHome, StatusAfterCall, StatusOutBound,
	}
	for _, s := range all {
		if !s.IsValid() {
			t.Fatalf("expected %s valid", s)
		}
	}
	if Status("coffee").IsValid() {
		t.Fatalf("expected invalid status rejected")
	}
}
