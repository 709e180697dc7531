package events

import "context"

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(context.Context, PostCreated) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
