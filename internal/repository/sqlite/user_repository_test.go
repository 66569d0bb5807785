package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/domain"
	"portal/internal/repository"
)

func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "portal.db"))
	require.NoError(t, err)

	repo := NewUserRepository(db)
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	user := &domain.User{
		ID:           "5f1c9a1e-0000-4000-8000-000000000001",
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice A",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		CreatedAt:    created,
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "Alice A", got.FullName)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.True(t, got.IsActive)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "id-1", Username: "bob", CreatedAt: time.Now()}))

	err := repo.Create(ctx, &domain.User{ID: "id-2", Username: "bob", CreatedAt: time.Now()})
	require.ErrorIs(t, err, repository.ErrUserExists)
}

func TestUserRepository_UsernameIsCaseSensitive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "id-1", Username: "carol", CreatedAt: time.Now()}))
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "id-2", Username: "Carol", CreatedAt: time.Now()}))

	_, err := repo.GetByUsername(ctx, "CAROL")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_IDCollisionIsNotUsernameConflict(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "id-1", Username: "dora", CreatedAt: time.Now()}))

	err := repo.Create(ctx, &domain.User{ID: "id-1", Username: "eve", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrUserExists)

	_, err = repo.GetByUsername(ctx, "eve")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}
