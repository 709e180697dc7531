package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/post-api/internal/command"
	"github.com/deppfellow/post-api/internal/errs"
	"github.com/deppfellow/post-api/internal/model"
	"github.com/deppfellow/post-api/internal/repository"
	"github.com/deppfellow/post-api/internal/validation"
)

const IllegalTitleMessage = "Title starts with an illegal word!!"

var illegalTitlePrefix = regexp.MustCompile(`(?i)^Qwerty`)

// PostEventEnqueuer schedules the post:created background task.
type PostEventEnqueuer interface {
	EnqueuePostCreated(ctx context.Context, postID uuid.UUID, title, summary string) error
}

type PostService struct {
	bus    command.Bus
	posts  repository.PostRepository
	events PostEventEnqueuer
}

// NewPostService builds the service. events may be nil.
func NewPostService(bus command.Bus, posts repository.PostRepository, events PostEventEnqueuer) *PostService {
	return &PostService{
		bus:    bus,
		posts:  posts,
		events: events,
	}
}

type CreatePostInput struct {
	ID      *string
	Title   string
	Summary string
}

// CheckTitle rejects titles that start with "Qwerty" in any case.
func CheckTitle(title string) error {
	if illegalTitlePrefix.MatchString(title) {
		return errs.NewBusinessRuleError(IllegalTitleMessage)
	}
	return nil
}

// CreatePost stores a new post and returns its id, exactly as supplied or
// freshly generated.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (string, error) {
	if err := CheckTitle(input.Title); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if input.ID != nil {
		id = *input.ID
	}

	err := s.bus.Dispatch(ctx, command.CreatePostCommand{
		ID:      id,
		Title:   input.Title,
		Summary: input.Summary,
	})
	if err != nil {
		return "", err
	}

	s.enqueueCreated(ctx, id, input.Title, input.Summary)

	return id, nil
}

// enqueueCreated is best effort: the post is already stored.
func (s *PostService) enqueueCreated(ctx context.Context, id, title, summary string) {
	if s.events == nil {
		return
	}

	postID, err := uuid.Parse(id)
	if err != nil {
		return
	}

	if err := s.events.EnqueuePostCreated(ctx, postID, title, summary); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("post_id", id).Msg("failed to enqueue post created task")
	}
}

// FindPost loads a post by its textual id. Only the dashed 36-character
// form is accepted, the same form create accepts for a supplied id.
func (s *PostService) FindPost(ctx context.Context, postID string) (*model.Post, error) {
	if !validation.IsValidUUID(postID) {
		return nil, errs.NewMalformedInputError(fmt.Sprintf("Invalid UUID %q", postID))
	}

	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, errs.NewMalformedInputError(fmt.Sprintf("Invalid UUID %q", postID))
	}

	post, err := s.posts.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, errs.NewNotFoundError(fmt.Sprintf("Post #%s not found!!", postID), true, nil)
		}
		return nil, err
	}

	return post, nil
}
