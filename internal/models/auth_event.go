package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuthEvent is a persisted record of an authentication action.
type AuthEvent struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	EventType string          `json:"event_type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
