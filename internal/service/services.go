package service

import (
	"github.com/deppfellow/post-api/internal/command"
	"github.com/deppfellow/post-api/internal/repository"
	"github.com/deppfellow/post-api/internal/server"
)

type Services struct {
	Post *PostService
}

// NewServices wires the command bus and the services that use it.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	bus := command.NewSyncBus(
		command.Recovery(s.Logger),
		command.Logging(s.Logger),
	)
	bus.Register(command.CreatePostName, command.NewCreatePostHandler(repos.Posts).Handle)

	var events PostEventEnqueuer
	if s.Job != nil {
		events = s.Job
	}

	return &Services{
		Post: NewPostService(bus, repos.Posts, events),
	}, nil
}
