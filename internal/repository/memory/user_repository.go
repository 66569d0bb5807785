// Package memory keeps users in process memory. It backs tests and
// throwaway local runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"portal/internal/domain"
	"portal/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Init(context.Context) error { return nil }

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("insert user %q: %w", user.Username, repository.ErrUserExists)
	}
	r.users[user.Username] = *user
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) Close(context.Context) error { return nil }

var _ repository.UserRepository = (*UserRepository)(nil)
