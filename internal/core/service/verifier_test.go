package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-service/internal/core/domain"
)

func seedUser(t *testing.T, repo *stubUserRepo, h *fakeHasher, username, password string) {
	t.Helper()
	hash, err := h.Hash(password)
	require.NoError(t, err)
	u, err := domain.NewUser(username, hash, []domain.RoleName{domain.RoleUser}, time.Now())
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), u)
	require.NoError(t, err)
}

func TestAuthenticationVerifier_Verify(t *testing.T) {
	repo := newStubUserRepo()
	h := &fakeHasher{}
	seedUser(t, repo, h, "alice", "Secr3t!")
	v := NewAuthenticationVerifier(repo, h)
	ctx := context.Background()

	user, ok, err := v.Verify(ctx, "alice", "Secr3t!")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	user, ok, err = v.Verify(ctx, "alice", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)

	user, ok, err = v.Verify(ctx, "ghost", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestAuthenticationVerifier_CorruptStoredHash(t *testing.T) {
	repo := newStubUserRepo()
	u, err := domain.NewUser("alice", "not-a-digest", []domain.RoleName{domain.RoleUser}, time.Now())
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), u)
	require.NoError(t, err)

	_, ok, err := NewAuthenticationVerifier(repo, &fakeHasher{}).Verify(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestAuthenticationVerifier_DummyDigestReused(t *testing.T) {
	h := &fakeHasher{}
	v := NewAuthenticationVerifier(newStubUserRepo(), h)

	first, err := v.dummyDigest()
	require.NoError(t, err)
	second, err := v.dummyDigest()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
