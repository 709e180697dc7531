package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/post-api/internal/lib/events"
)

// handlePostCreatedTask publishes a post.created event for the task's post.
// A publish failure is returned so asynq retries the task.
func (j *JobService) handlePostCreatedTask(ctx context.Context, t *asynq.Task) error {
	var p PostCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal post created payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskPostCreated).
		Str("post_id", p.PostID.String()).
		Msg("Processing post created task")

	err := j.publisher.PublishPostCreated(ctx, events.NewPostCreated(p.PostID, p.Title, p.Summary))
	if err != nil {
		j.logger.Error().
			Str("type", TaskPostCreated).
			Str("post_id", p.PostID.String()).
			Err(err).
			Msg("Failed to publish post created event")
		return err
	}

	j.logger.Info().
		Str("type", TaskPostCreated).
		Str("post_id", p.PostID.String()).
		Msg("Published post created event")

	return nil
}
