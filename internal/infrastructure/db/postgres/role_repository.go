package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// RoleRepository implements ports.RoleRepository on PostgreSQL.
type RoleRepository struct {
	pool pool
}

func NewRoleRepository(p pool) *RoleRepository {
	return &RoleRepository{pool: p}
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	var (
		id       int64
		roleName string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, string(name)).Scan(&id, &roleName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: strconv.FormatInt(id, 10), Name: domain.RoleName(roleName)}, nil
}

// EnsureRoles inserts any of names that are not yet present.
func (r *RoleRepository) EnsureRoles(ctx context.Context, names ...domain.RoleName) error {
	for _, name := range names {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(name)); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}
