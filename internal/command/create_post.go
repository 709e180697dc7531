package command

import (
	"context"
	"fmt"

	"github.com/deppfellow/post-api/internal/model"
	"github.com/deppfellow/post-api/internal/repository"
)

const CreatePostName = "post.create"

// CreatePostCommand carries the identity and content of a post to create.
type CreatePostCommand struct {
	ID      string
	Title   string
	Summary string
}

func (CreatePostCommand) CommandName() string {
	return CreatePostName
}

// CreatePostHandler builds a Post through the validating factory and
// saves it.
type CreatePostHandler struct {
	posts repository.PostRepository
}

func NewCreatePostHandler(posts repository.PostRepository) *CreatePostHandler {
	return &CreatePostHandler{posts: posts}
}

// Handle is registered on the bus under CreatePostName.
func (h *CreatePostHandler) Handle(ctx context.Context, cmd Command) error {
	c, ok := cmd.(CreatePostCommand)
	if !ok {
		return fmt.Errorf("create post handler: unexpected command %T", cmd)
	}

	post, err := model.NewPost(c.ID, c.Title, c.Summary)
	if err != nil {
		return err
	}

	return h.posts.Save(ctx, post)
}
