package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portal/internal/auth"
	"portal/internal/domain"
	"portal/internal/repository"
)

const bearerScheme = "bearer"

// AuthGate resolves an Authorization header to the user it was issued for.
type AuthGate struct {
	tokens *auth.TokenIssuer
	users  repository.UserRepository
}

func NewAuthGate(tokens *auth.TokenIssuer, users repository.UserRepository) *AuthGate {
	return &AuthGate{tokens: tokens, users: users}
}

// Authenticate returns ErrMissingCredential, ErrInvalidToken or
// ErrUserNotFound for rejected requests and ErrUnavailable when the store
// could not be consulted.
func (g *AuthGate) Authenticate(ctx context.Context, authorization string) (*domain.User, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return nil, ErrMissingCredential
	}

	username, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return user, nil
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>" value.
func BearerToken(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
