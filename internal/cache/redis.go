package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/linkset"
)

const redisKeyPrefix = "strata:links:"

// notFoundMarker is stored when a space has no linkset document, so the
// absence is cached too (it is the common state for fresh spaces).
const notFoundMarker = "!"

// RedisLinksCache shares cached ACL links between nodes. Same contract as
// LinksCache; Redis outages degrade to reading through the store.
type RedisLinksCache struct {
	inner  acl.LinksProvider
	rdb    *redis.Client
	ttl    time.Duration
	record Recorder
}

func NewRedisLinksCache(inner acl.LinksProvider, rdb *redis.Client, ttl time.Duration, record Recorder) *RedisLinksCache {
	if record == nil {
		record = func(string) {}
	}
	return &RedisLinksCache{inner: inner, rdb: rdb, ttl: ttl, record: record}
}

func (c *RedisLinksCache) ACLinksFor(ctx context.Context, sp database.Space) ([]linkset.Link, error) {
	key := redisKeyPrefix + sp.ID.String()

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		c.record("hit")
		if raw == notFoundMarker {
			return nil, linkset.ErrNotFound
		}
		var links []linkset.Link
		if err := json.Unmarshal([]byte(raw), &links); err == nil {
			return links, nil
		}
		// Corrupt cache entry: fall through to the store.
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("redis cache read for space %s failed: %v", sp.ID, err)
	}

	c.record("miss")
	links, err := c.inner.ACLinksFor(ctx, sp)
	switch {
	case err == nil:
		if raw, merr := json.Marshal(links); merr == nil {
			if serr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
				log.Printf("redis cache write for space %s failed: %v", sp.ID, serr)
			}
		}
	case errors.Is(err, linkset.ErrNotFound):
		if serr := c.rdb.Set(ctx, key, notFoundMarker, c.ttl).Err(); serr != nil {
			log.Printf("redis cache write for space %s failed: %v", sp.ID, serr)
		}
	}
	return links, err
}

// Invalidate drops the shared entry for a space.
func (c *RedisLinksCache) Invalidate(spaceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rdb.Del(ctx, redisKeyPrefix+spaceID).Err(); err != nil {
		log.Printf("redis cache invalidate for space %s failed: %v", spaceID, err)
	}
	c.record("evict")
}
