package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an authentication action.
type EventType string

const (
	EventUserSignedUp    EventType = "user_signed_up"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventUserLoginFailed EventType = "user_login_failed"
	EventUserLoggedOut   EventType = "user_logged_out"
	EventTokenRefreshed  EventType = "token_refreshed"
)

// Event is published for every authentication action and recorded by the worker.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      EventType      `json:"type"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"` // nil for failed logins of unknown users
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewEvent creates an event stamped with a fresh ID and the current time.
func NewEvent(eventType EventType, userID *uuid.UUID, metadata map[string]any) *Event {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
