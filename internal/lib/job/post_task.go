package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskPostCreated fans a stored post out to the event broker.
const TaskPostCreated = "post:created"

type PostCreatedPayload struct {
	PostID  uuid.UUID `json:"post_id"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
}

// NewPostCreatedTask builds the task with up to 3 retries on the default
// queue and a 30 second handler timeout.
func NewPostCreatedTask(postID uuid.UUID, title, summary string) (*asynq.Task, error) {
	payload, err := json.Marshal(PostCreatedPayload{
		PostID:  postID,
		Title:   title,
		Summary: summary,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskPostCreated,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
