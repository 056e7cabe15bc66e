// Package linkset fetches and parses a space's linkset document: the set of
// (anchor, rel="acl", target) triples declaring which ACL resource governs
// which subtree. It is a thin adapter over the Resource Store.
package linkset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/store"
)

var (
	// ErrNotFound means the linkset resource does not exist. Callers fold
	// this into "no links declared"; it is not a hard error.
	ErrNotFound = errors.New("linkset: document not found")

	// ErrMalformed means the linkset resource exists but cannot be parsed.
	// This propagates as a resolution failure; it never degrades silently.
	ErrMalformed = errors.New("linkset: malformed document")
)

// Link is one anchor->ACL-resource declaration. Document order is preserved
// because the resolver's equal-specificity tie-break is last-declared-wins.
type Link struct {
	Anchor string
	Target string
}

// Wire format: {"linkset":[{"anchor": <path>, "acl":[{"href": <href>}]}]}.
type document struct {
	Linkset []entry `json:"linkset"`
}

type entry struct {
	Anchor string `json:"anchor"`
	ACL    []ref  `json:"acl"`
}

type ref struct {
	Href string `json:"href"`
}

// Parse flattens a linkset document into its ACL links. An entry that
// declares ACL targets without an anchor, or with an empty href, is
// malformed: an unanchored ACL link is exactly the shape of the old
// accept-anything bypass and must never be interpreted loosely.
func Parse(body []byte) ([]Link, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var links []Link
	for _, e := range doc.Linkset {
		if len(e.ACL) == 0 {
			continue
		}
		if e.Anchor == "" {
			return nil, fmt.Errorf("%w: acl link without anchor", ErrMalformed)
		}
		for _, r := range e.ACL {
			if r.Href == "" {
				return nil, fmt.Errorf("%w: acl link without href (anchor %q)", ErrMalformed, e.Anchor)
			}
			links = append(links, Link{Anchor: e.Anchor, Target: r.Href})
		}
	}
	return links, nil
}

// Accessor fetches linkset documents through the Resource Store.
type Accessor struct {
	store store.Store
}

func NewAccessor(st store.Store) *Accessor {
	return &Accessor{store: st}
}

// ACLinksFor returns the flattened ACL links declared for the space, in
// document order. ErrNotFound when no linkset document exists yet.
func (a *Accessor) ACLinksFor(ctx context.Context, sp database.Space) ([]Link, error) {
	body, err := a.store.Get(ctx, sp.LinksetHref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("linkset: fetch %s: %w", sp.LinksetHref, err)
	}
	return Parse(body)
}
