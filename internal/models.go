package database

import (
	"time"

	"github.com/google/uuid"
)

// Space represents the 'spaces' table. The controller is an identity URI
// set at creation time; it is the basis of every default-deny decision and
// is never rewritten afterwards.
type Space struct {
	ID          uuid.UUID `db:"id"`
	Controller  string    `db:"controller"`
	LinksetHref string    `db:"linkset_href"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Resource represents the 'resources' table: any path stored under a space,
// including linkset documents and ACL resources.
type Resource struct {
	Path        string    `db:"path"`
	SpaceID     uuid.UUID `db:"space_id"`
	Body        []byte    `db:"body"`
	ContentType string    `db:"content_type"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
