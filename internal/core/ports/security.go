package ports

import (
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// PasswordHasher performs one-way hashing of credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only when the
	// digest itself is unusable.
	Verify(password, digest string) (bool, error)
}

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs access tokens bound to a subject (the username).
type TokenIssuer interface {
	Issue(subject string, roles []domain.RoleName) (IssuedToken, error)
}

// TokenClaims is what the transport layer learns from a verified token.
type TokenClaims struct {
	Subject  string
	Roles    []domain.RoleName
	IssuedAt time.Time
}

// TokenVerifier validates tokens produced by a TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}
