package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/repository"
)

const (
	bookDetailPrefix = "book:detail:"
	bookListPrefix   = "books:v:"
	versionKey       = "books:version"

	// DefaultTTL bounds staleness for entries that survive a missed
	// invalidation.
	DefaultTTL = 15 * time.Minute
)

// BookCache is a versioned Redis cache for catalog responses. List keys
// embed a version counter; invalidation bumps the counter so stale list
// entries become unreachable and expire by TTL.
type BookCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewBookCache creates the catalog cache.
func NewBookCache(client *redis.Client, logger *zap.Logger) *BookCache {
	return &BookCache{redis: client, ttl: DefaultTTL, logger: logger}
}

// GetList retrieves a cached catalog page. The second return reports a
// cache hit.
func (c *BookCache) GetList(ctx context.Context, params repository.BookListParams) (map[string]interface{}, bool) {
	version, err := c.version(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	data, err := c.redis.Get(ctx, c.listKey(version, params)).Result()
	if err != nil {
		return nil, false
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		c.logger.Warn("Failed to unmarshal cached book list", zap.Error(err))
		return nil, false
	}
	return response, true
}

// SetListAsync caches a catalog page in the background so request
// latency never waits on Redis writes.
func (c *BookCache) SetListAsync(params repository.BookListParams, response map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := c.version(ctx)
		if err != nil || version == 0 {
			return
		}

		payload, err := json.Marshal(response)
		if err != nil {
			c.logger.Warn("Failed to marshal book list for cache", zap.Error(err))
			return
		}

		if err := c.redis.Set(ctx, c.listKey(version, params), payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache book list", zap.Error(err))
		}
	}()
}

// Invalidate makes every cached list unreachable by bumping the version
// and drops the detail entry for the changed book.
func (c *BookCache) Invalidate(ctx context.Context, bookID string) {
	if err := c.redis.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Error("Failed to bump book cache version", zap.Error(err))
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.redis.Del(bgCtx, bookDetailPrefix+bookID).Err(); err != nil {
			c.logger.Warn("Failed to delete book detail cache", zap.String("book_id", bookID), zap.Error(err))
		}
	}()
}

func (c *BookCache) version(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := c.redis.Get(ctx, versionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}

		if err == redis.Nil {
			if err := c.redis.Set(ctx, versionKey, 1, 0).Err(); err == nil {
				return 1, nil
			}
		}

		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	return 0, fmt.Errorf("failed to read book cache version after %d retries", maxRetries)
}

func (c *BookCache) listKey(version int64, p repository.BookListParams) string {
	author := ""
	if p.AuthorID != nil {
		author = p.AuthorID.String()
	}
	return fmt.Sprintf(
		"%s%d:p:%d:l:%d:q:%s:c:%s:a:%s:f:%t:u:%t",
		bookListPrefix, version, p.Page, p.PerPage,
		p.Search, p.CategorySlug, author, p.FeaturedOnly, p.IncludeUnavailable,
	)
}
