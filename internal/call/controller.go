package call

import (
	"context"
	"log/slog"
	"time"

	"agent-console/internal/status"
)

// Log is the persistence contract for call records.
//
// Create returns the record with its assigned id. Writes are fire-and-forget
// from the controller's point of view: failures are logged and local state
// continues optimistically.
type Log interface {
	CreateRecord(ctx context.Context, rec Record) (Record, error)
	UpdateRecordDuration(ctx context.Context, id string, durationSeconds int) error
	ListRecent(ctx context.Context, agentID string, limit int) ([]Record, error)
}

// StatusPort is the slice of the status tracker the controller drives.
// *status.Tracker satisfies it.
type StatusPort interface {
	Current() status.Status
	Transition(ctx context.Context, next status.Status)
}

// Controller arbitrates the single-call-at-a-time lifecycle for one agent
// and its coupling to working status.
//
// Invalid transition requests (e.g. Answer while not ringing) are guarded
// by state checks and silently ignored: the console UI is the only caller
// and only offers valid actions.
//
// Not safe for concurrent use on its own; the owning session serializes
// all calls (see internal/session).
type Controller struct {
	log     Log
	statusP StatusPort
	slog    *slog.Logger
	clock   func() time.Time

	agentID string

	state          State
	ringingNumber  string
	activeNumber   string
	activeRecordID string
	elapsed        int
}

func NewController(agentID string, log Log, statusPort StatusPort, l *slog.Logger) *Controller {
	if l == nil {
		l = slog.Default()
	}
	return &Controller{
		log:     log,
		statusP: statusPort,
		slog:    l,
		clock:   time.Now,
		agentID: agentID,
		state:   StateIdle,
	}
}

// WithClock overrides the controller clock. Test hook.
func (c *Controller) WithClock(clock func() time.Time) *Controller {
	c.clock = clock
	return c
}

// OfferIncoming presents an inbound call. Valid only from idle.
// No record is created yet; the record captures the final outcome when the
// agent answers or declines.
func (c *Controller) OfferIncoming(phoneNumber string) {
	if c.state != StateIdle {
		return
	}
	c.state = StateRinging
	c.ringingNumber = phoneNumber
}

// Answer accepts the ringing call and connects it.
func (c *Controller) Answer(ctx context.Context) {
	if c.state != StateRinging {
		return
	}

	rec := c.createRecord(ctx, c.ringingNumber, DirectionInbound, OutcomeAnswered)

	c.state = StateActive
	c.activeNumber = c.ringingNumber
	c.activeRecordID = rec.ID
	c.ringingNumber = ""
	c.elapsed = 0

	c.enforceOnCall(ctx)
}

// Decline refuses the ringing call. Status is unaffected.
func (c *Controller) Decline(ctx context.Context) {
	if c.state != StateRinging {
		return
	}
	c.createRecord(ctx, c.ringingNumber, DirectionInbound, OutcomeDeclined)
	c.state = StateIdle
	c.ringingNumber = ""
}

// Miss records a ring that timed out unanswered. Defined for completeness;
// no timer drives it today.
func (c *Controller) Miss(ctx context.Context) {
	if c.state != StateRinging {
		return
	}
	c.createRecord(ctx, c.ringingNumber, DirectionInbound, OutcomeMissed)
	c.state = StateIdle
	c.ringingNumber = ""
}

// WithdrawRing silently drops a ringing call without writing any record.
// Used when status is forced to gone_home while ringing.
func (c *Controller) WithdrawRing() {
	if c.state != StateRinging {
		return
	}
	c.state = StateIdle
	c.ringingNumber = ""
}

// PlaceOutbound dials out. Valid only from idle; outbound calls skip
// ringing since the agent initiated them.
func (c *Controller) PlaceOutbound(ctx context.Context, phoneNumber string) {
	if c.state != StateIdle {
		return
	}

	rec := c.createRecord(ctx, phoneNumber, DirectionOutbound, OutcomeAnswered)

	c.state = StateActive
	c.activeNumber = phoneNumber
	c.activeRecordID = rec.ID
	c.elapsed = 0

	c.enforceOnCall(ctx)
}

// EndCall hangs up, back-fills the record duration and unconditionally
// forces status to after_call.
func (c *Controller) EndCall(ctx context.Context) {
	if c.state != StateActive {
		return
	}

	if c.activeRecordID != "" {
		if err := c.log.UpdateRecordDuration(ctx, c.activeRecordID, c.elapsed); err != nil {
			c.slog.Error("call: duration update failed", "agent_id", c.agentID, "record_id", c.activeRecordID, "err", err)
		}
	}

	c.state = StateIdle
	c.activeNumber = ""
	c.activeRecordID = ""
	c.elapsed = 0

	c.statusP.Transition(ctx, status.StatusAfterCall)
}

// Tick advances the active-call duration by one second; no-op otherwise.
func (c *Controller) Tick() {
	if c.state == StateActive {
		c.elapsed++
	}
}

func (c *Controller) State() State { return c.state }

// RingingNumber is the offered number while ringing, empty otherwise.
func (c *Controller) RingingNumber() string { return c.ringingNumber }

// ActiveNumber is the connected number while active, empty otherwise.
func (c *Controller) ActiveNumber() string { return c.activeNumber }

func (c *Controller) Elapsed() int { return c.elapsed }

// Recent returns the agent's call log, most recent first.
func (c *Controller) Recent(ctx context.Context, limit int) ([]Record, error) {
	return c.log.ListRecent(ctx, c.agentID, limit)
}

// enforceOnCall moves status to on_call when entering active. Idempotent:
// re-entering active while already on_call must not create a spurious
// segment.
func (c *Controller) enforceOnCall(ctx context.Context) {
	if c.statusP.Current() != status.StatusOnCall {
		c.statusP.Transition(ctx, status.StatusOnCall)
	}
}

func (c *Controller) createRecord(ctx context.Context, number string, dir Direction, outcome Outcome) Record {
	rec := Record{
		AgentID:     c.agentID,
		PhoneNumber: number,
		Direction:   dir,
		Outcome:     outcome,
		ReceivedAt:  c.clock().UTC(),
	}
	out, err := c.log.CreateRecord(ctx, rec)
	if err != nil {
		c.slog.Error("call: record create failed", "agent_id", c.agentID, "direction", dir, "outcome", outcome, "err", err)
		return rec
	}
	return out
}
