package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user whose
	// display name is already taken.
	ErrUserAlreadyExists = errors.New("user with this name already exists")

	// ErrUserNotFound is returned when a lookup matches no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for a failed name/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
