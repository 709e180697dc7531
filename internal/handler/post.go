package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/post-api/internal/errs"
	"github.com/deppfellow/post-api/internal/server"
	"github.com/deppfellow/post-api/internal/service"
	"github.com/deppfellow/post-api/internal/validation"
)

type PostHandler struct {
	Handler
	posts *service.PostService
}

func NewPostHandler(s *server.Server, posts *service.PostService) *PostHandler {
	return &PostHandler{
		Handler: NewHandler(s),
		posts:   posts,
	}
}

// CreatePostRequest uses pointers so a missing field can be told apart
// from an empty one.
type CreatePostRequest struct {
	ID      *string `json:"id"`
	Title   *string `json:"title" validate:"required"`
	Summary *string `json:"summary" validate:"required"`

	// decodeErr holds a type error on id or summary. It is reported by
	// Validate after the title rule.
	decodeErr error
}

// UnmarshalJSON decodes title first. A mistyped title fails the bind, while
// a mistyped id or summary is kept for Validate so an illegal title still
// wins.
func (r *CreatePostRequest) UnmarshalJSON(data []byte) error {
	fields, err := validation.DecodeObject(data)
	if err != nil {
		return err
	}

	*r = CreatePostRequest{}

	if err := validation.DecodeField(fields, "title", &r.Title); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		dst  **string
	}{
		{"id", &r.ID},
		{"summary", &r.Summary},
	} {
		if err := validation.DecodeField(fields, f.name, f.dst); err != nil {
			r.decodeErr = err
			break
		}
	}

	return nil
}

// Validate applies the title rule before anything else, so an illegal
// title is reported even when other fields are missing or mistyped.
func (r *CreatePostRequest) Validate() error {
	if r.Title != nil {
		if err := service.CheckTitle(*r.Title); err != nil {
			return err
		}
	}

	if r.decodeErr != nil {
		return errs.NewMalformedInputError(validation.DecodeErrorMessage(r.decodeErr))
	}

	return validation.Validator().Struct(r)
}

type CreatePostResponse struct {
	PostID string `json:"post_id"`
}

func (r CreatePostResponse) traceID() string { return r.PostID }

type FindPostRequest struct {
	PostID string `param:"postId" validate:"required"`
}

func (r *FindPostRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type PostResponse struct {
	PostID  string `json:"post_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func (r PostResponse) traceID() string { return r.PostID }

func (h *PostHandler) CreatePost(c echo.Context, req *CreatePostRequest) (CreatePostResponse, error) {
	id, err := h.posts.CreatePost(c.Request().Context(), service.CreatePostInput{
		ID:      req.ID,
		Title:   *req.Title,
		Summary: *req.Summary,
	})
	if err != nil {
		return CreatePostResponse{}, err
	}

	return CreatePostResponse{PostID: id}, nil
}

func (h *PostHandler) FindPost(c echo.Context, req *FindPostRequest) (PostResponse, error) {
	post, err := h.posts.FindPost(c.Request().Context(), req.PostID)
	if err != nil {
		return PostResponse{}, err
	}

	return PostResponse{
		PostID:  post.ID().String(),
		Title:   post.Title(),
		Summary: post.Summary(),
	}, nil
}
