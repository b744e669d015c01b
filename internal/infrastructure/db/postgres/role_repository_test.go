package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-service/internal/core/domain"
)

func TestRoleRepository_FindByName(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *domain.Role
		wantErr   error
	}{
		{
			name: "seeded",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name FROM roles`).WithArgs("ROLE_USER").
					WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ROLE_USER"))
			},
			want: &domain.Role{ID: "1", Name: domain.RoleUser},
		},
		{
			name: "not seeded",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name FROM roles`).WithArgs("ROLE_USER").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrRoleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, err := NewRoleRepository(mock).FindByName(context.Background(), domain.RoleUser)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoleRepository_EnsureRoles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO roles`).WithArgs("ROLE_USER").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO roles`).WithArgs("ROLE_ADMIN").WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, NewRoleRepository(mock).EnsureRoles(context.Background(), domain.RoleUser, domain.RoleAdmin))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_InsertEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Now()
	mock.ExpectExec(`INSERT INTO auth_events`).
		WithArgs("01J0", "registered", "alice", pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err = NewEventRepository(mock).InsertEvent(context.Background(), &domain.AuthEvent{
		ID: "01J0", Kind: domain.EventRegistered, Username: "alice", OccurredAt: at,
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS roles`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
