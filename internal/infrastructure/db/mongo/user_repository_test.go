package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const usersNS = "authdb.users"

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by username", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "password_hash", Value: "$2a$10$hash"},
			{Key: "roles", Value: bson.A{"ROLE_USER"}},
			{Key: "created_at", Value: int64(1700000000)},
			{Key: "updated_at", Value: int64(1700000000)},
		}))

		u, err := NewUserRepository(mt.DB).FindByUsername(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "alice", u.Username)
		assert.Equal(mt, "$2a$10$hash", u.PasswordHash)
		assert.Equal(mt, []domain.RoleName{domain.RoleUser}, u.Roles)
		assert.Equal(mt, time.Unix(1700000000, 0).UTC(), u.CreatedAt)
	})

	mt.Run("find by username not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByUsername(ctx, "ghost")
		require.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("exists by username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(1)},
		}))

		ok, err := NewUserRepository(mt.DB).ExistsByUsername(ctx, "alice")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("exists by username false", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		ok, err := NewUserRepository(mt.DB).ExistsByUsername(ctx, "ghost")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("save assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		user, err := domain.NewUser("alice", "$2a$10$hash", []domain.RoleName{domain.RoleUser}, time.Now())
		require.NoError(mt, err)

		saved, err := NewUserRepository(mt.DB).Save(ctx, user)
		require.NoError(mt, err)
		assert.NotEmpty(mt, saved.ID)
		assert.Equal(mt, "alice", saved.Username)
		assert.Empty(mt, user.ID, "input must not be mutated")
	})

	mt.Run("save duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: authdb.users index: uniq_username",
		}))
		user, err := domain.NewUser("alice", "$2a$10$hash", []domain.RoleName{domain.RoleUser}, time.Now())
		require.NoError(mt, err)

		_, err = NewUserRepository(mt.DB).Save(ctx, user)
		require.ErrorIs(mt, err, domain.ErrUsernameTaken)
	})

	mt.Run("save other failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))
		user, err := domain.NewUser("alice", "$2a$10$hash", []domain.RoleName{domain.RoleUser}, time.Now())
		require.NoError(mt, err)

		_, err = NewUserRepository(mt.DB).Save(ctx, user)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrUsernameTaken)
	})
}

func TestRoleRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by name", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "authdb.roles", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "ROLE_USER"},
		}))

		role, err := NewRoleRepository(mt.DB).FindByName(ctx, domain.RoleUser)
		require.NoError(mt, err)
		assert.Equal(mt, &domain.Role{ID: id.Hex(), Name: domain.RoleUser}, role)
	})

	mt.Run("missing role", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "authdb.roles", mtest.FirstBatch))

		_, err := NewRoleRepository(mt.DB).FindByName(ctx, domain.RoleUser)
		require.ErrorIs(mt, err, domain.ErrRoleNotFound)
	})

	mt.Run("ensure roles upserts each name", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
		)

		err := NewRoleRepository(mt.DB).EnsureRoles(ctx, domain.RoleUser, domain.RoleAdmin)
		require.NoError(mt, err)
	})
}

func TestEventRepository_InsertEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewEventRepository(mt.DB).InsertEvent(context.Background(), &domain.AuthEvent{
			ID:         "01HZX",
			Kind:       domain.EventRegistered,
			Username:   "alice",
			OccurredAt: time.Now(),
		})
		require.NoError(mt, err)
	})
}
