package directory

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"agent-console/internal/rbac"
)

var (
	ErrInvalidArgument    = errors.New("directory: invalid argument")
	ErrNotFound           = errors.New("directory: not found")
	ErrUsernameTaken      = errors.New("directory: username already exists")
	ErrInvalidCredentials = errors.New("directory: invalid username or password")
	ErrRoleMismatch       = errors.New("directory: role mismatch")
)

const minSecretLen = 6

// Repository is the persistence contract for user accounts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (User, bool, error)
	FindByID(ctx context.Context, id string) (User, bool, error)

	// Create persists the account and its employee profile row.
	// Implementations return ErrUsernameTaken on a uniqueness violation.
	Create(ctx context.Context, u User) (User, error)

	List(ctx context.Context, search string) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error
}

// Service manages employee accounts and performs the sign-in check.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Authenticate verifies a sign-in attempt against the chosen portal role.
//
// The secret check is byte equality against the stored value, preserved
// deliberately from the system this console replaces. Do not upgrade it to
// a hashing scheme without migrating the stored secrets alongside.
func (s *Service) Authenticate(ctx context.Context, username, secret, portalRole string) (User, error) {
	if strings.TrimSpace(username) == "" || secret == "" {
		return User{}, ErrInvalidCredentials
	}
	if !rbac.IsValidRole(portalRole) {
		return User{}, ErrInvalidArgument
	}

	u, ok, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(secret)) != 1 {
		return User{}, ErrInvalidCredentials
	}

	if u.Role != portalRole {
		return User{}, ErrRoleMismatch
	}

	return u, nil
}

// Register creates an agent account plus its employee profile.
func (s *Service) Register(ctx context.Context, username, secret string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrInvalidArgument
	}
	if len(secret) < minSecretLen {
		return User{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	u := User{
		Username:     username,
		PasswordHash: secret,
		Role:         rbac.RoleAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, u)
}

// UpdateAccount changes username and/or secret. Empty fields are left as-is.
func (s *Service) UpdateAccount(ctx context.Context, id, username, secret string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	username = strings.TrimSpace(username)
	if username == "" && secret == "" {
		return User{}, ErrInvalidArgument
	}
	if secret != "" && len(secret) < minSecretLen {
		return User{}, ErrInvalidArgument
	}

	u, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}

	if username != "" {
		u.Username = username
	}
	if secret != "" {
		u.PasswordHash = secret
	}
	u.UpdatedAt = s.clock().UTC()

	return s.repo.Update(ctx, u)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	u, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// List returns accounts, optionally filtered by a username substring.
func (s *Service) List(ctx context.Context, search string) ([]User, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}
