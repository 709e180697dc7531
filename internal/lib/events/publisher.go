package events

import "context"

type Publisher interface {
	PublishPostCreated(ctx context.Context, e PostCreated) error
	Close() error
}
