package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// UserRepository implements ports.UserRepository on PostgreSQL. The
// users_username_key constraint is the source of truth for uniqueness.
type UserRepository struct {
	pool pool
}

func NewUserRepository(p pool) *UserRepository {
	return &UserRepository{pool: p}
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var (
		id        int64
		u         domain.User
		roleNames []string
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.password_hash, u.created_at, u.updated_at,
		       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.username = $1
		GROUP BY u.id`, username).
		Scan(&id, &u.Username, &u.PasswordHash, &createdAt, &updatedAt, &roleNames)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}

	u.ID = strconv.FormatInt(id, 10)
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updatedAt.UTC()
	u.Roles = make([]domain.RoleName, 0, len(roleNames))
	for _, name := range roleNames {
		u.Roles = append(u.Roles, domain.RoleName(name))
	}
	return &u, nil
}

// Save inserts the user and its role links in one transaction.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt).Scan(&id)
	if err != nil {
		_ = tx.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	for _, role := range user.Roles {
		tag, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) SELECT $1, id FROM roles WHERE name = $2`,
			id, string(role))
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("link role %s: %w", role, err)
		}
		if tag.RowsAffected() == 0 {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("link role %s: %w", role, domain.ErrRoleNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}

	saved := *user
	saved.ID = strconv.FormatInt(id, 10)
	saved.Roles = append([]domain.RoleName(nil), user.Roles...)
	return &saved, nil
}
