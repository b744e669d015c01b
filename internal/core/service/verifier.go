package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// AuthenticationVerifier checks a submitted credential pair against the
// stored hash. Unknown usernames are verified against a throwaway digest so
// that both failure paths cost one hash comparison.
type AuthenticationVerifier struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher

	dummyOnce sync.Once
	dummy     string
	dummyErr  error
}

func NewAuthenticationVerifier(users ports.UserRepository, hasher ports.PasswordHasher) *AuthenticationVerifier {
	return &AuthenticationVerifier{users: users, hasher: hasher}
}

// Verify returns the matching user and true on success. Unknown user and
// wrong password both yield (nil, false, nil); an error is returned only
// when the store or the stored digest is broken.
func (v *AuthenticationVerifier) Verify(ctx context.Context, username, password string) (*domain.User, bool, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, fmt.Errorf("verify: find user: %w", err)
		}
		digest, derr := v.dummyDigest()
		if derr != nil {
			return nil, false, fmt.Errorf("verify: %w", derr)
		}
		_, _ = v.hasher.Verify(password, digest)
		return nil, false, nil
	}

	ok, err := v.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, false, fmt.Errorf("verify: compare hash for %q: %w", username, err)
	}
	if !ok {
		return nil, false, nil
	}
	return user, true, nil
}

func (v *AuthenticationVerifier) dummyDigest() (string, error) {
	v.dummyOnce.Do(func() {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			v.dummyErr = fmt.Errorf("dummy digest: %w", err)
			return
		}
		v.dummy, v.dummyErr = v.hasher.Hash(hex.EncodeToString(b))
	})
	return v.dummy, v.dummyErr
}
