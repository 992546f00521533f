package queue

import "context"

// NoopPublisher drops every event. Used when RABBITMQ_URL is not set.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error { return nil }

var _ Publisher = NoopPublisher{}
