package postgres

import (
	"context"
	"fmt"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// EventRepository implements ports.AuthEventRepository on PostgreSQL.
type EventRepository struct {
	pool pool
}

func NewEventRepository(p pool) *EventRepository {
	return &EventRepository{pool: p}
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_events (id, kind, username, occurred_at) VALUES ($1, $2, $3, $4)`,
		event.ID, string(event.Kind), event.Username, event.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
