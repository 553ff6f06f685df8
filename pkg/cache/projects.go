// Package cache provides a read-through Redis cache for the open-project
// listing. The listing is the one hot read in the system and tolerates a few
// seconds of staleness; proposal counts on the project detail view and
// contract state are never served from here.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/models"
)

// versionKey tags every listing entry with a generation number. Invalidation
// bumps the generation instead of scanning for keys; stale entries expire on
// their own TTL.
const versionKey = "projects:listing:version"

// ProjectListCache caches open-project listing pages. A nil Redis client
// disables the cache: every Get misses and every Set is a no-op.
type ProjectListCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProjectListCache creates a ProjectListCache. rdb may be nil.
func NewProjectListCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ProjectListCache {
	return &ProjectListCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.Named("project-list-cache"),
	}
}

// Get returns the cached listing page for the key, or (nil, false) on a miss.
// Redis failures degrade to a miss; the caller falls through to the database.
func (c *ProjectListCache) Get(ctx context.Context, key string) ([]*models.Project, bool) {
	if c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, c.entryKey(ctx, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Listing cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var projects []*models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		c.logger.Warn("Listing cache entry corrupt, treating as miss", zap.Error(err))
		return nil, false
	}

	return projects, true
}

// Set stores a listing page under the key with the configured TTL.
func (c *ProjectListCache) Set(ctx context.Context, key string, projects []*models.Project) {
	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(projects)
	if err != nil {
		c.logger.Warn("Failed to marshal listing cache entry", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, c.entryKey(ctx, key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Listing cache write failed", zap.Error(err))
	}
}

// Invalidate drops all cached listing pages by bumping the generation.
// Called after any write that changes which projects are open.
func (c *ProjectListCache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}

	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn("Listing cache invalidation failed", zap.Error(err))
	}
}

func (c *ProjectListCache) entryKey(ctx context.Context, key string) string {
	version, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		version = 0
	}
	return fmt.Sprintf("projects:listing:%d:%s", version, key)
}
