package acl

import (
	"context"
	"errors"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/hierarchy"
	"github.com/strataspace/strata-backend/internal/linkset"
)

// LinksProvider yields a space's declared ACL links. Satisfied by
// linkset.Accessor and by the resolution cache wrapping it.
type LinksProvider interface {
	ACLinksFor(ctx context.Context, sp database.Space) ([]linkset.Link, error)
}

// Resolver implements effective ACL discovery: which ACL resource, if any,
// governs a given target path within a space.
type Resolver struct {
	links LinksProvider
}

func NewResolver(links LinksProvider) *Resolver {
	return &Resolver{links: links}
}

// SpaceRoot is the least specific governing path of a space.
func SpaceRoot(sp database.Space) string {
	return "/space/" + sp.ID.String() + "/"
}

// EffectiveACL returns the href of the ACL resource governing target, or
// ok=false when no declared anchor is an ancestor-or-self of the target and
// the default policy applies.
//
// A link participates only if its anchor equals the target or is a
// segment-aligned ancestor of it. Among participating links the most
// specific (longest) anchor wins; equal-specificity ties go to the link
// declared last in the document. An anchor that is not an ancestor-or-self
// of the target never influences the outcome, even when it is the only
// entry in the linkset.
func (r *Resolver) EffectiveACL(ctx context.Context, sp database.Space, target string) (href string, ok bool, err error) {
	ancestors := hierarchy.Ancestors(SpaceRoot(sp), target)
	if len(ancestors) == 0 {
		return "", false, nil
	}

	links, err := r.links.ACLinksFor(ctx, sp)
	if errors.Is(err, linkset.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	// Lower rank = closer to the target = more specific.
	rank := make(map[string]int, len(ancestors))
	for i, p := range ancestors {
		rank[p] = i
	}

	best := len(ancestors)
	for _, l := range links {
		idx, matched := rank[l.Anchor]
		if !matched {
			// Anchors for containers may omit the trailing slash.
			idx, matched = rank[hierarchy.Normalize(l.Anchor)]
		}
		if !matched {
			continue
		}
		if idx <= best {
			best = idx
			href = l.Target
			ok = true
		}
	}
	return href, ok, nil
}
