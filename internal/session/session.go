package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"agent-console/internal/call"
	"agent-console/internal/status"
)

var ErrInvalidStatus = errors.New("session: invalid status")

// PresencePublisher receives best-effort status updates for the admin
// wallboard. Implementations must not block the session for long; failures
// are theirs to log.
type PresencePublisher interface {
	Publish(ctx context.Context, agentID string, s status.Status)
}

// Options tunes one agent session.
type Options struct {
	// Delay and Number drive the simulated inbound-call feed.
	// Nil values fall back to the defaults in simulate.go.
	Delay  DelayFunc
	Number NumberFunc

	// SimDisabled turns the synthetic feed off entirely.
	SimDisabled bool

	// Presence is optional.
	Presence PresencePublisher

	Logger *slog.Logger
}

// Session is the per-agent console session: one status tracker, one call
// controller, the once-per-second tick and the simulation scheduler.
//
// All mutations are serialized behind one mutex; timer callbacks and user
// actions never interleave mid-transition.
type Session struct {
	mu sync.Mutex

	agentID string
	tracker *status.Tracker
	calls   *call.Controller
	log     *slog.Logger

	delay       DelayFunc
	number      NumberFunc
	simDisabled bool
	presence    PresencePublisher

	// simTimer is the only cancellable unit: cancelled whenever the guard
	// condition goes false, re-armed fresh (never resumed) when it holds.
	simTimer *time.Timer

	done      chan struct{}
	closeOnce sync.Once
}

func New(agentID string, tracker *status.Tracker, calls *call.Controller, opts Options) *Session {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	delay := opts.Delay
	if delay == nil {
		delay = UniformDelay(5*time.Second, 11*time.Second)
	}
	number := opts.Number
	if number == nil {
		number = USNumber
	}
	return &Session{
		agentID:     agentID,
		tracker:     tracker,
		calls:       calls,
		log:         l,
		delay:       delay,
		number:      number,
		simDisabled: opts.SimDisabled,
		presence:    opts.Presence,
		done:        make(chan struct{}),
	}
}

// Start restores or opens the agent's status segment and arms the
// simulation scheduler. Call once before Run.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Initialize(ctx)
	s.publishLocked(ctx)
	s.rearmLocked()
}

// Run drives the once-per-second tick until ctx is cancelled or the
// session is closed. Intended to run on its own goroutine.
func (s *Session) Run(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// Close cancels the pending simulation timer and stops Run.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancelSimLocked()
		close(s.done)
	})
}

// Tick advances both duration counters by one second.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Tick()
	s.calls.Tick()
}

// Transition performs an agent-requested status change.
//
// Forcing gone_home while a call is ringing silently withdraws the ring:
// no declined or missed record is written.
func (s *Session) Transition(ctx context.Context, next status.Status) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Transition(ctx, next)
	if next == status.StatusGoneHome {
		s.calls.WithdrawRing()
	}
	s.publishLocked(ctx)
	s.rearmLocked()
	return nil
}

// Answer accepts the ringing call.
func (s *Session) Answer(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Answer(ctx)
	s.publishLocked(ctx)
	s.rearmLocked()
}

// Decline refuses the ringing call.
func (s *Session) Decline(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Decline(ctx)
	s.publishLocked(ctx)
	s.rearmLocked()
}

// PlaceOutbound dials out from an idle session.
func (s *Session) PlaceOutbound(ctx context.Context, number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.PlaceOutbound(ctx, number)
	s.publishLocked(ctx)
	s.rearmLocked()
}

// EndCall hangs up the active call.
func (s *Session) EndCall(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.EndCall(ctx)
	s.publishLocked(ctx)
	s.rearmLocked()
}

// Recent returns the agent's call log, most recent first.
func (s *Session) Recent(ctx context.Context, limit int) ([]call.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls.Recent(ctx, limit)
}

// CanSignOut is true iff the agent is in gone_home.
func (s *Session) CanSignOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Current() == status.StatusGoneHome
}

// RingView is the ringing-call view state.
type RingView struct {
	PhoneNumber string `json:"phone_number"`
}

// ActiveView is the connected-call view state.
type ActiveView struct {
	PhoneNumber     string `json:"phone_number"`
	DurationSeconds int    `json:"duration_seconds"`
}

// View is the read model exposed to the presentation layer.
type View struct {
	AgentID string `json:"agent_id"`

	Status         status.Status `json:"status"`
	StatusDuration int           `json:"status_duration_seconds"`
	CanSignOut     bool          `json:"can_sign_out"`

	Ringing *RingView   `json:"ringing,omitempty"`
	Active  *ActiveView `json:"active,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		AgentID:        s.agentID,
		Status:         s.tracker.Current(),
		StatusDuration: s.tracker.Elapsed(),
		CanSignOut:     s.tracker.Current() == status.StatusGoneHome,
	}
	switch s.calls.State() {
	case call.StateRinging:
		v.Ringing = &RingView{PhoneNumber: s.calls.RingingNumber()}
	case call.StateActive:
		v.Active = &ActiveView{
			PhoneNumber:     s.calls.ActiveNumber(),
			DurationSeconds: s.calls.Elapsed(),
		}
	}
	return v
}

// guardLocked is the scheduler guard: only an available, idle agent may be
// offered a simulated call.
func (s *Session) guardLocked() bool {
	if s.simDisabled {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
	}
	return s.tracker.Current() == status.StatusAvailable && s.calls.State() == call.StateIdle
}

// rearmLocked cancels any pending simulation timer and, if the guard still
// holds, schedules a fresh random delay. A partially-elapsed timer is never
// resumed.
func (s *Session) rearmLocked() {
	s.cancelSimLocked()
	if !s.guardLocked() {
		return
	}
	d := s.delay()
	s.simTimer = time.AfterFunc(d, s.fireSim)
}

func (s *Session) cancelSimLocked() {
	if s.simTimer != nil {
		s.simTimer.Stop()
		s.simTimer = nil
	}
}

func (s *Session) fireSim() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The timer may have lost a race with a cancel; re-check the guard.
	if !s.guardLocked() {
		return
	}

	number := s.number()
	s.calls.OfferIncoming(number)
	s.log.Debug("session: simulated inbound call", "agent_id", s.agentID, "phone_number", number)
}

func (s *Session) publishLocked(ctx context.Context) {
	if s.presence == nil {
		return
	}
	s.presence.Publish(ctx, s.agentID, s.tracker.Current())
}
