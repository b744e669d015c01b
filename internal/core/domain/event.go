package domain

import "time"

// AuthEventKind classifies an entry of the authentication audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventRegistered     AuthEventKind = "registered"
)

// AuthEvent is one audit record. It never carries credentials.
type AuthEvent struct {
	ID         string
	Kind       AuthEventKind
	Username   string
	OccurredAt time.Time
}
