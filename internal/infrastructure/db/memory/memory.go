// Package memory holds mutex-guarded in-process repositories. They back
// STORE_DRIVER=memory and end-to-end tests; nothing survives a restart.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Store implements the user, role and auth event repositories.
type Store struct {
	mu     sync.RWMutex
	seq    int64
	users  map[string]*domain.User
	roles  map[domain.RoleName]*domain.Role
	events []domain.AuthEvent
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		roles: make(map[domain.RoleName]*domain.Role),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]domain.RoleName(nil), u.Roles...)
	return &c
}

func (s *Store) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Save is atomic with respect to the uniqueness check.
func (s *Store) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	for _, r := range user.Roles {
		if _, ok := s.roles[r]; !ok {
			return nil, domain.ErrRoleNotFound
		}
	}

	s.seq++
	stored := cloneUser(user)
	stored.ID = strconv.FormatInt(s.seq, 10)
	s.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (s *Store) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	c := *r
	return &c, nil
}

// EnsureRoles seeds the given roles.
func (s *Store) EnsureRoles(_ context.Context, names ...domain.RoleName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if _, ok := s.roles[name]; !ok {
			s.roles[name] = &domain.Role{ID: "role-" + string(name), Name: name}
		}
	}
	return nil
}

func (s *Store) InsertEvent(_ context.Context, event *domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Events returns a copy of the recorded audit trail.
func (s *Store) Events() []domain.AuthEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuthEvent(nil), s.events...)
}
