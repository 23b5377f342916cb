package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"agent-console/internal/call"
	"agent-console/internal/status"
)

type capturedPresence struct {
	mu   sync.Mutex
	last map[string]status.Status
}

func (p *capturedPresence) Publish(ctx context.Context, agentID string, s status.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		p.last = make(map[string]status.Status)
	}
	p.last[agentID] = s
}

func (p *capturedPresence) Last(agentID string) status.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last[agentID]
}

func newTestSession(t *testing.T, opts Options) (*Session, *call.MemoryLog, *status.MemoryStore) {
	t.Helper()
	segs := status.NewMemoryStore()
	tracker := status.NewTracker("agent-1", segs, nil)
	log := call.NewMemoryLog()
	controller := call.NewController("agent-1", log, tracker, nil)
	s := New("agent-1", tracker, controller, opts)
	t.Cleanup(s.Close)
	return s, log, segs
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestStart_InitializesAvailableAndPublishesPresence(t *testing.T) {
	pres := &capturedPresence{}
	s, _, segs := newTestSession(t, Options{SimDisabled: true, Presence: pres})
	s.Start(context.Background())

	v := s.View()
	if v.Status != status.StatusAvailable || v.StatusDuration != 0 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if segs.OpenCount("agent-1") != 1 {
		t.Fatalf("expected one open segment")
	}
	if pres.Last("agent-1") != status.StatusAvailable {
		t.Fatalf("expected presence published, got %q", pres.Last("agent-1"))
	}
}

func TestScheduler_FiresWhileAvailableAndIdle(t *testing.T) {
	s, _, _ := newTestSession(t, Options{
		Delay:  func() time.Duration { return time.Millisecond },
		Number: func() string { return "+1 212-555-0101" },
	})
	s.Start(context.Background())

	if !waitFor(t, time.Second, func() bool { return s.View().Ringing != nil }) {
		t.Fatalf("expected a simulated call to ring")
	}
	if got := s.View().Ringing.PhoneNumber; got != "+1 212-555-0101" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestScheduler_NeverFiresOutsideAvailable(t *testing.T) {
	s, _, _ := newTestSession(t, Options{
		Delay:  func() time.Duration { return 50 * time.Millisecond },
		Number: func() string { return "+1 212-555-0101" },
	})
	s.Start(context.Background())
	if err := s.Transition(context.Background(), status.StatusBreak); err != nil {
		t.Fatalf("transition: %v", err)
	}

	time.Sleep(120 * time.Millisecond)
	if s.View().Ringing != nil {
		t.Fatalf("scheduler fired while on break")
	}
}

func TestScheduler_GuardChangeCancelsPendingTimer(t *testing.T) {
	s, _, _ := newTestSession(t, Options{
		Delay:  func() time.Duration { return 50 * time.Millisecond },
		Number: func() string { return "+1 212-555-0101" },
	})
	s.Start(context.Background())

	// Cancel the pending offer before it fires; the old timer never lands.
	if err := s.Transition(context.Background(), status.StatusLunch); err != nil {
		t.Fatalf("transition: %v", err)
	}
	time.Sleep(120 * time.Millisecond)
	if s.View().Ringing != nil {
		t.Fatalf("cancelled timer fired")
	}
}

func TestScheduler_ReschedulesAfterDecline(t *testing.T) {
	s, log, _ := newTestSession(t, Options{
		Delay:  func() time.Duration { return time.Millisecond },
		Number: func() string { return "+1 305-555-0123" },
	})
	ctx := context.Background()
	s.Start(ctx)

	if !waitFor(t, time.Second, func() bool { return s.View().Ringing != nil }) {
		t.Fatalf("expected first ring")
	}
	s.Decline(ctx)

	recs := log.Records()
	if len(recs) != 1 || recs[0].Outcome != call.OutcomeDeclined || recs[0].DurationSeconds != 0 {
		t.Fatalf("unexpected records: %+v", recs)
	}

	// Guard holds again after decline; a fresh call arrives.
	if !waitFor(t, time.Second, func() bool { return s.View().Ringing != nil }) {
		t.Fatalf("expected scheduler to re-arm after decline")
	}
}

func TestAnswerTickEndCallScenario(t *testing.T) {
	pres := &capturedPresence{}
	s, log, _ := newTestSession(t, Options{SimDisabled: true, Presence: pres})
	ctx := context.Background()
	s.Start(ctx)

	// Inject a ring the way the scheduler would.
	s.mu.Lock()
	s.calls.OfferIncoming("+1 415-555-0140")
	s.mu.Unlock()

	s.Answer(ctx)

	v := s.View()
	if v.Active == nil || v.Active.PhoneNumber != "+1 415-555-0140" {
		t.Fatalf("expected active call, got %+v", v)
	}
	if v.Status != status.StatusOnCall {
		t.Fatalf("expected on_call, got %s", v.Status)
	}
	if pres.Last("agent-1") != status.StatusOnCall {
		t.Fatalf("expected presence on_call, got %q", pres.Last("agent-1"))
	}

	for i := 0; i < 30; i++ {
		s.Tick()
	}
	if got := s.View().Active.DurationSeconds; got != 30 {
		t.Fatalf("expected call duration 30, got %d", got)
	}

	s.EndCall(ctx)

	v = s.View()
	if v.Active != nil || v.Ringing != nil {
		t.Fatalf("expected idle view, got %+v", v)
	}
	if v.Status != status.StatusAfterCall {
		t.Fatalf("expected after_call, got %s", v.Status)
	}
	recs := log.Records()
	if len(recs) != 1 || recs[0].DurationSeconds != 30 {
		t.Fatalf("expected back-filled duration 30, got %+v", recs)
	}
}

func TestGoneHomeWhileRingingWithdrawsSilently(t *testing.T) {
	s, log, _ := newTestSession(t, Options{SimDisabled: true})
	ctx := context.Background()
	s.Start(ctx)

	s.mu.Lock()
	s.calls.OfferIncoming("+1 718-555-0175")
	s.mu.Unlock()

	if err := s.Transition(ctx, status.StatusGoneHome); err != nil {
		t.Fatalf("transition: %v", err)
	}

	v := s.View()
	if v.Ringing != nil || v.Active != nil {
		t.Fatalf("expected ring withdrawn, got %+v", v)
	}
	if len(log.Records()) != 0 {
		t.Fatalf("withdrawn ring must leave no record, got %d", len(log.Records()))
	}
	if !v.CanSignOut {
		t.Fatalf("expected can_sign_out in gone_home")
	}
}

func TestPlaceOutbound_ActiveImmediately(t *testing.T) {
	s, _, _ := newTestSession(t, Options{SimDisabled: true})
	ctx := context.Background()
	s.Start(ctx)

	s.PlaceOutbound(ctx, "+1 555-0100")

	v := s.View()
	if v.Ringing != nil {
		t.Fatalf("outbound must skip ringing")
	}
	if v.Active == nil || v.Active.PhoneNumber != "+1 555-0100" {
		t.Fatalf("expected active outbound call, got %+v", v)
	}
	if v.Status != status.StatusOnCall {
		t.Fatalf("expected on_call, got %s", v.Status)
	}
}

func TestTransition_RejectsUnknownStatus(t *testing.T) {
	s, _, _ := newTestSession(t, Options{SimDisabled: true})
	s.Start(context.Background())

	if err := s.Transition(context.Background(), status.Status("coffee")); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTick_AdvancesStatusDuration(t *testing.T) {
	s, _, _ := newTestSession(t, Options{SimDisabled: true})
	s.Start(context.Background())

	for i := 0; i < 7; i++ {
		s.Tick()
	}
	if got := s.View().StatusDuration; got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}
