package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory account store useful for tests.
// It is not intended for production use.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return User{}, ErrUsernameTaken
		}
	}
	u.ID = uuid.NewString()
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepository) List(ctx context.Context, search string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []User
	for _, u := range r.users {
		if search == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return User{}, ErrNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Username == u.Username {
			return User{}, ErrUsernameTaken
		}
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}
