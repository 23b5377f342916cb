package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only: these records are not exposed to agents, and
// callers treat logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogAccountAction records an admin mutation of an employee account.
func (s *Service) LogAccountAction(ctx context.Context, typ EventType, actorUserID, actorRole, ip, employeeID, message string) error {
	return s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		EmployeeID:  employeeID,
		Message:     message,
	})
}
