package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	seq       int
	findErr   error
	existsErr error
	saveErr   error
	saves     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.RoleName(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.users[username]
	return ok, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Save enforces uniqueness the way a unique index would.
func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubRoleRepo struct {
	roles map[domain.RoleName]*domain.Role
	err   error
}

func seededRoles() *stubRoleRepo {
	return &stubRoleRepo{roles: map[domain.RoleName]*domain.Role{
		domain.RoleUser:  {ID: "r1", Name: domain.RoleUser},
		domain.RoleAdmin: {ID: "r2", Name: domain.RoleAdmin},
	}}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Hasher / issuer / recorder stubs
// ---------------------------------------------------------------------------

const fakePrefix = "fake$"

type fakeHasher struct {
	verifyCalls atomic.Int32
	hashErr     error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	sum := sha256.Sum256([]byte(password))
	return fakePrefix + hex.EncodeToString(sum[:]), nil
}

func (h *fakeHasher) Verify(password, digest string) (bool, error) {
	h.verifyCalls.Add(1)
	if !strings.HasPrefix(digest, fakePrefix) {
		return false, errors.New("malformed digest")
	}
	sum := sha256.Sum256([]byte(password))
	return digest == fakePrefix+hex.EncodeToString(sum[:]), nil
}

type stubIssuer struct {
	err    error
	issued []string
	mu     sync.Mutex
}

func (i *stubIssuer) Issue(subject string, roles []domain.RoleName) (ports.IssuedToken, error) {
	if i.err != nil {
		return ports.IssuedToken{}, i.err
	}
	i.mu.Lock()
	i.issued = append(i.issued, subject)
	i.mu.Unlock()
	return ports.IssuedToken{
		Value:     "token-for-" + subject,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) kinds() []domain.AuthEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}
