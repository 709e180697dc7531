package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/post-api/internal/errs"
	"github.com/deppfellow/post-api/internal/model"
	"github.com/google/uuid"
)

// ErrPostNotFound is returned by Find when no post has the requested id.
var ErrPostNotFound = errors.New("post not found")

// PostRepository persists posts. Posts are write-once: Save never
// overwrites an existing id.
type PostRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Save(ctx context.Context, post *model.Post) error
}

// newPostExistsError mirrors what sqlerr produces for a primary key
// violation on the posts table.
func newPostExistsError() *errs.HTTPError {
	code := "POST_ALREADY_EXISTS"
	return errs.NewBadRequestError("A Post with this identifier already exists", true, &code, nil)
}
