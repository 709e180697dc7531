package repository

import (
	"github.com/deppfellow/post-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Posts PostRepository
}

// NewRepositories builds the repositories on top of the server's shared
// pool. When a Redis client is configured, post lookups go through the
// cache first.
func NewRepositories(s *server.Server) *Repositories {
	var posts PostRepository = NewPostgresPostRepository(s.DB.Pool)

	if s.Redis != nil {
		posts = NewCachedPostRepository(posts, s.Redis, s.Config.Redis.PostCacheTTL, s.Logger)
	}

	return &Repositories{
		Posts: posts,
	}
}
