package audit

import "time"

// Event is an immutable, append-only audit record of an admin action on an
// employee account.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; admin flows never block on audit failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated admin causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// EmployeeID is the account the action targeted.
	EmployeeID string `json:"employee_id,omitempty" db:"employee_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAccountCreated EventType = "account_created"
	EventTypeAccountUpdated EventType = "account_updated"
	EventTypeAccountDeleted EventType = "account_deleted"
)
