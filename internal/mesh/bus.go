// Package mesh is the invalidation event bus. Writes that change a space's
// controller record, linkset, or ACL resources publish events here so that
// any resolution cache layered above the store can evict stale entries.
package mesh

import (
	"context"
	"encoding/json"
	"time"
)

// TopicSpaceInvalidate carries SpaceInvalidation payloads.
const TopicSpaceInvalidate = "space.invalidate"

type Event struct {
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"ts"`
}

// SpaceInvalidation names the space whose cached resolution state is stale.
type SpaceInvalidation struct {
	SpaceID string `json:"space_id"`
	Path    string `json:"path,omitempty"`
}

type Handler func(ctx context.Context, e Event)

type Bus interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(topic string, h Handler) (unsubscribe func(), err error)
	Close() error
}

// PublishSpaceInvalidation is a convenience wrapper for the write path.
func PublishSpaceInvalidation(ctx context.Context, b Bus, spaceID, path string) error {
	payload, err := json.Marshal(SpaceInvalidation{SpaceID: spaceID, Path: path})
	if err != nil {
		return err
	}
	return b.Publish(ctx, Event{Topic: TopicSpaceInvalidate, Payload: payload})
}
