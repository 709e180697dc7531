// Package job runs background work on the Redis-backed asynq queue.
//
// The API enqueues a task after every stored post; the worker side turns
// those tasks into broker events.
package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/post-api/internal/config"
	"github.com/deppfellow/post-api/internal/lib/events"
)

// JobService holds the asynq client used to enqueue and the server that
// runs workers.
type JobService struct {
	Client    *asynq.Client
	server    *asynq.Server
	logger    *zerolog.Logger
	publisher events.Publisher
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config, publisher events.Publisher) *JobService {
	redisAddr := cfg.Redis.Address

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisAddr,
	})

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &JobService{
		Client:    client,
		server:    server,
		logger:    logger,
		publisher: publisher,
	}
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPostCreated, j.handlePostCreatedTask)
	return mux
}

// Start launches the workers. asynq's Start returns once they are running.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return err
	}

	return nil
}

// EnqueuePostCreated schedules the post:created task.
func (j *JobService) EnqueuePostCreated(ctx context.Context, postID uuid.UUID, title, summary string) error {
	task, err := NewPostCreatedTask(postID, title, summary)
	if err != nil {
		return fmt.Errorf("building post created task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskPostCreated, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("post_id", postID.String()).
		Msg("Enqueued post created task")

	return nil
}

// Stop shuts the workers down and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	j.Client.Close()
}
