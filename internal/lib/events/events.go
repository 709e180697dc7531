// Package events publishes domain events about posts to a message broker.
package events

import (
	"time"

	"github.com/google/uuid"
)

const TypePostCreated = "post.created"

type PostCreatedPayload struct {
	PostID  uuid.UUID `json:"post_id"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
}

// PostCreated is emitted once a post has been stored.
type PostCreated struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Payload   PostCreatedPayload `json:"payload"`
}

func NewPostCreated(postID uuid.UUID, title, summary string) PostCreated {
	return PostCreated{
		Type:      TypePostCreated,
		Timestamp: time.Now().UTC(),
		Payload: PostCreatedPayload{
			PostID:  postID,
			Title:   title,
			Summary: summary,
		},
	}
}
