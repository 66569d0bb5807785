package repository

import (
	"context"
	"errors"

	"portal/internal/domain"
)

var (
	// ErrUserNotFound is returned when no record matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the backend rejects a duplicate username.
	ErrUserExists = errors.New("user already exists")
)

// UserRepository defines persistence operations for User entities.
//
// Create must be insert-if-absent: the backend enforces username uniqueness
// and reports a violation as ErrUserExists.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Close(ctx context.Context) error
}
