package domain

import "errors"

// Caller-visible failures of the auth service. Login never distinguishes an
// unknown username from a wrong password.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrConfiguration      = errors.New("service misconfigured")
	ErrTokenIssuance      = errors.New("token issuance failed")
)

// Store-level and profile lookup errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
	ErrInvalidUser  = errors.New("invalid user")
	ErrForbidden    = errors.New("access forbidden")
)
