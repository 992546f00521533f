package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/benvon/sailor-swift/internal/queue"
	"go.uber.org/zap"
)

// EventRecorder persists authentication events consumed from the queue.
type EventRecorder struct {
	events database.AuthEventRepositoryInterface
	logger *zap.Logger
}

// NewEventRecorder creates a new event recorder
func NewEventRecorder(events database.AuthEventRepositoryInterface, logger *zap.Logger) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{events: events, logger: logger}
}

// Process stores the message's event and acknowledges it. A failed insert is
// requeued once; a failure on redelivery dead-letters the message.
func (r *EventRecorder) Process(ctx context.Context, msg queue.MessageInterface) error {
	event := msg.GetEvent()
	if event == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			r.logger.Warn("event_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("message carries no event")
	}

	record, err := toAuthEvent(event)
	if err != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			r.logger.Warn("event_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	if err := r.events.Insert(ctx, record); err != nil {
		requeue := !msg.IsRedelivered()
		if nackErr := msg.Nack(requeue); nackErr != nil {
			r.logger.Warn("event_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("record event %s (requeued=%t): %w", event.ID, requeue, err)
	}

	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack event: %w", err)
	}

	r.logger.Debug("event_recorded",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", string(event.Type)),
	)
	return nil
}

func toAuthEvent(event *queue.Event) (*models.AuthEvent, error) {
	var metadata json.RawMessage
	if len(event.Metadata) > 0 {
		b, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = b
	}
	return &models.AuthEvent{
		ID:        event.ID,
		UserID:    event.UserID,
		EventType: string(event.Type),
		Metadata:  metadata,
		CreatedAt: event.CreatedAt,
	}, nil
}
