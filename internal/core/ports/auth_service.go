package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Credentials is the transient username/password pair of a login or
// registration call. It is never persisted.
type Credentials struct {
	Username string
	Password string
}

// AuthResult is returned on a successful login or registration.
type AuthResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	Username  string
}

type AuthService interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, creds Credentials) (*AuthResult, error)
	Profile(ctx context.Context, username string) (*domain.User, error)
}
