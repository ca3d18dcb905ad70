package domain

import "errors"

// Input and lookup failures.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrTaskNotFound = errors.New("task not found")
)

// Credential and token failures. ErrTokenExpired is the only one a client
// should answer with the refresh flow; the rest require a fresh login.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrTokenMissing          = errors.New("no token provided")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshMissing        = errors.New("refresh token not provided")
	ErrRefreshRejected       = errors.New("invalid or expired refresh token")
	ErrTooManyAttempts       = errors.New("too many failed login attempts")
)

// Authorization failures.
var (
	ErrIdentityUnresolved = errors.New("caller identity unresolved")
	ErrForbidden          = errors.New("access forbidden")
)

// ErrStoreUnavailable wraps collaborator I/O failures (timeouts, network).
var ErrStoreUnavailable = errors.New("store unavailable")
