package database

import (
	"context"
	"fmt"

	"github.com/benvon/sailor-swift/internal/models"
	"github.com/google/uuid"
)

// AuthEventRepository stores the audit trail of authentication actions.
type AuthEventRepository struct {
	db *DB
}

// NewAuthEventRepository creates a new auth event repository.
func NewAuthEventRepository(db *DB) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

// Insert stores an event. Inserting the same event ID twice is a no-op, which
// keeps redelivered queue messages from creating duplicates.
func (r *AuthEventRepository) Insert(ctx context.Context, event *models.AuthEvent) error {
	var metadata any
	if len(event.Metadata) > 0 {
		metadata = []byte(event.Metadata)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_events (id, user_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.UserID, event.EventType, metadata, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// ListByUser returns the most recent events for a user.
func (r *AuthEventRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, event_type, metadata, created_at
		FROM auth_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*models.AuthEvent
	for rows.Next() {
		e := &models.AuthEvent{}
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan auth event: %w", err)
		}
		e.Metadata = metadata
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth events: %w", err)
	}
	return events, nil
}
