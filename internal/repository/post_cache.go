package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/deppfellow/post-api/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ PostRepository = (*CachedPostRepository)(nil)

// DefaultPostCacheTTL is used when no TTL is configured.
const DefaultPostCacheTTL = 5 * time.Minute

// CachedPostRepository is a read-through, write-through Redis cache in
// front of another PostRepository.
//
// Redis is never the source of truth: any cache failure falls back to the
// wrapped repository and is only logged.
type CachedPostRepository struct {
	next   PostRepository
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

type cachedPost struct {
	PostID  string `json:"post_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func NewCachedPostRepository(next PostRepository, client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedPostRepository {
	if ttl <= 0 {
		ttl = DefaultPostCacheTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CachedPostRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func postCacheKey(id uuid.UUID) string {
	return "post:" + id.String()
}

func (c *CachedPostRepository) Find(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	key := postCacheKey(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		post, decodeErr := decodeCachedPost(raw)
		if decodeErr == nil {
			return post, nil
		}
		c.logger.Warn().Err(decodeErr).Str("key", key).Msg("discarding corrupt post cache entry")
	case errors.Is(err, redis.Nil):
		// miss
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("post cache read failed")
	}

	post, err := c.next.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	c.store(ctx, post)
	return post, nil
}

func (c *CachedPostRepository) Save(ctx context.Context, post *model.Post) error {
	if err := c.next.Save(ctx, post); err != nil {
		return err
	}

	c.store(ctx, post)
	return nil
}

func (c *CachedPostRepository) store(ctx context.Context, post *model.Post) {
	raw, err := json.Marshal(cachedPost{
		PostID:  post.ID().String(),
		Title:   post.Title(),
		Summary: post.Summary(),
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("encoding post for cache failed")
		return
	}

	if err := c.client.Set(ctx, postCacheKey(post.ID()), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("post_id", post.ID().String()).Msg("post cache write failed")
	}
}

func decodeCachedPost(raw []byte) (*model.Post, error) {
	var cp cachedPost
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, err
	}
	return model.NewPost(cp.PostID, cp.Title, cp.Summary)
}
