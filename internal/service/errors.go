package service

import "errors"

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInvalidInput wraps request values the service refuses to process.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential is returned by the auth gate when no bearer token was presented.
	ErrMissingCredential = errors.New("missing bearer credential")
	// ErrInvalidToken is returned by the auth gate when the token fails verification.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrUserNotFound is returned by the auth gate when the token subject no longer exists.
	ErrUserNotFound = errors.New("token subject not found")

	// ErrUnavailable wraps credential store failures.
	ErrUnavailable = errors.New("credential store unavailable")
)

// IsUnauthorized reports whether err is one of the auth gate rejections.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUserNotFound)
}
