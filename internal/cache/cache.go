// Package cache is an optional read-through cache of per-space ACL links.
// Spec for correctness: any write that changes a space's controller,
// linkset, or ACL resources must invalidate the space's entry, which is
// driven by mesh invalidation events. With no cache configured the resolver
// reads through the store on every decision.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/linkset"
	"github.com/strataspace/strata-backend/internal/mesh"
)

// Recorder observes cache events ("hit", "miss", "evict") for metrics.
type Recorder func(event string)

type cacheEntry struct {
	links    []linkset.Link
	notFound bool
	expires  time.Time
}

// LinksCache caches ACLinksFor results per space with a TTL, fronting any
// LinksProvider. Hard errors (malformed documents, store failures) are never
// cached: every decision against a broken space re-reads and re-fails.
type LinksCache struct {
	inner  acl.LinksProvider
	ttl    time.Duration
	record Recorder

	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
}

func NewLinksCache(inner acl.LinksProvider, ttl time.Duration, record Recorder) *LinksCache {
	if record == nil {
		record = func(string) {}
	}
	return &LinksCache{
		inner:   inner,
		ttl:     ttl,
		record:  record,
		entries: map[uuid.UUID]cacheEntry{},
	}
}

func (c *LinksCache) ACLinksFor(ctx context.Context, sp database.Space) ([]linkset.Link, error) {
	c.mu.RLock()
	e, ok := c.entries[sp.ID]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expires) {
		c.record("hit")
		if e.notFound {
			return nil, linkset.ErrNotFound
		}
		return append([]linkset.Link(nil), e.links...), nil
	}

	c.record("miss")
	links, err := c.inner.ACLinksFor(ctx, sp)
	switch {
	case err == nil:
		c.put(sp.ID, cacheEntry{links: links, expires: time.Now().Add(c.ttl)})
	case errors.Is(err, linkset.ErrNotFound):
		c.put(sp.ID, cacheEntry{notFound: true, expires: time.Now().Add(c.ttl)})
	}
	return links, err
}

func (c *LinksCache) put(id uuid.UUID, e cacheEntry) {
	c.mu.Lock()
	c.entries[id] = e
	c.mu.Unlock()
}

// Invalidate drops the cached entry for a space.
func (c *LinksCache) Invalidate(spaceID string) {
	id, err := uuid.Parse(spaceID)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	c.record("evict")
}

// Invalidator is anything that can evict a space's cached state.
type Invalidator interface {
	Invalidate(spaceID string)
}

// SubscribeInvalidations wires a cache to the mesh bus.
func SubscribeInvalidations(bus mesh.Bus, inv Invalidator) (func(), error) {
	return bus.Subscribe(mesh.TopicSpaceInvalidate, func(ctx context.Context, e mesh.Event) {
		var p mesh.SpaceInvalidation
		if err := json.Unmarshal(e.Payload, &p); err != nil || p.SpaceID == "" {
			return
		}
		inv.Invalidate(p.SpaceID)
	})
}
