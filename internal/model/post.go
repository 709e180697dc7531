package model

import (
	"github.com/deppfellow/post-api/internal/errs"
	"github.com/deppfellow/post-api/internal/validation"
	"github.com/google/uuid"
)

// Post is the aggregate root for a published post.
//
// Fields are unexported so a Post can only be obtained through NewPost and
// is never mutated afterwards.
type Post struct {
	id      uuid.UUID
	title   string
	summary string
}

type postFields struct {
	ID      string `json:"id" validate:"uuidstr"`
	Title   string `json:"title" validate:"notblank,max=20"`
	Summary string `json:"summary" validate:"notblank,max=255"`
}

// NewPost validates its arguments and builds a Post.
//
// It fails with a VALIDATION_ERROR *errs.HTTPError when id is not a UUID,
// or when title/summary is blank or longer than its limit (counted in
// characters, not bytes). Either a complete Post or an error is returned.
func NewPost(id, title, summary string) (*Post, error) {
	fields := postFields{ID: id, Title: title, Summary: summary}
	if err := validation.Validator().Struct(fields); err != nil {
		return nil, errs.NewValidationError(validation.ExtractFieldErrors(err))
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.NewValidationError([]errs.FieldError{{Field: "id", Error: "must be a valid UUID"}})
	}

	return &Post{
		id:      parsed,
		title:   title,
		summary: summary,
	}, nil
}

func (p *Post) ID() uuid.UUID {
	return p.id
}

func (p *Post) Title() string {
	return p.title
}

func (p *Post) Summary() string {
	return p.summary
}
