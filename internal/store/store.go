// Package store provides the Resource Store collaborator: persistence of
// spaces and resource bodies. The authorization engine only ever reads
// through this interface; it is injected, never reached through globals.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
)

// ErrNotFound is returned when a space or resource path does not exist.
// Callers must not conflate it with an authorization denial.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface consumed by the authorization core and
// the HTTP facade.
type Store interface {
	// CreateSpace persists a new space record. The controller and linkset
	// href are fixed at creation.
	CreateSpace(ctx context.Context, sp database.Space) error

	// GetSpace loads a space record by id; ErrNotFound if absent.
	GetSpace(ctx context.Context, id uuid.UUID) (database.Space, error)

	// Get returns the stored body for a resource path; ErrNotFound if absent.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetResource returns the full resource row, content type included.
	// Used by the HTTP facade; the authorization core only needs Get.
	GetResource(ctx context.Context, path string) (database.Resource, error)

	// Put stores a resource body under path. changed reports whether the
	// stored content differs from what was already there (JSON bodies are
	// compared canonically, so an identical re-PUT reports changed=false).
	Put(ctx context.Context, spaceID uuid.UUID, path string, body []byte, contentType string) (changed bool, err error)

	// ListChildren returns the direct children of a container path, one
	// entry per child segment (child containers keep their trailing slash).
	ListChildren(ctx context.Context, container string) ([]string, error)

	// ListSpaces returns all space records, newest first. Admin surface only.
	ListSpaces(ctx context.Context) ([]database.Space, error)
}

// DirectChildren reduces stored paths under a container to its immediate
// children: one entry per child segment, child containers with a trailing
// slash. Shared by the Store implementations.
func DirectChildren(container string, paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if !strings.HasPrefix(p, container) || p == container {
			continue
		}
		rest := p[len(container):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i+1]
		}
		if !seen[rest] {
			seen[rest] = true
			out = append(out, rest)
		}
	}
	sort.Strings(out)
	return out
}
