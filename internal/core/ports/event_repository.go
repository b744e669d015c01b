package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// AuthEventRepository persists the authentication audit trail.
type AuthEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuthEventRecorder accepts audit events without blocking the caller.
type AuthEventRecorder interface {
	Record(event domain.AuthEvent)
}
