package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Implementations must enforce username uniqueness themselves and report a
// conflict on Save as domain.ErrUsernameTaken.
type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Save durably stores a new user and returns it with its assigned ID.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RoleRepository resolves seeded roles by symbolic name.
type RoleRepository interface {
	// FindByName returns domain.ErrRoleNotFound when the role was never seeded.
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
}
