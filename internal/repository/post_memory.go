package repository

import (
	"context"
	"sync"

	"github.com/deppfellow/post-api/internal/model"
	"github.com/google/uuid"
)

var _ PostRepository = (*MemoryPostRepository)(nil)

// MemoryPostRepository keeps posts in a map. It backs the handler and
// service tests.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*model.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[uuid.UUID]*model.Post)}
}

func (r *MemoryPostRepository) Find(_ context.Context, id uuid.UUID) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (r *MemoryPostRepository) Save(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID()]; exists {
		return newPostExistsError()
	}
	r.posts[post.ID()] = post
	return nil
}

// Len reports how many posts are stored.
func (r *MemoryPostRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts)
}
