package common

import "errors"

// Business logic errors shared by the auth and admin surfaces.
// The moderation engine carries its own taxonomy in internal/domain.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrModeratorNotFound = errors.New("moderator not found")
	ErrModeratorExists   = errors.New("moderator already exists")
	ErrAccountDisabled   = errors.New("account disabled")

	ErrInvalidInput = errors.New("invalid input")
)
