package acl

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/linkset"
)

type staticLinks struct {
	links []linkset.Link
	err   error
}

func (s staticLinks) ACLinksFor(ctx context.Context, sp database.Space) ([]linkset.Link, error) {
	return s.links, s.err
}

func testSpace() database.Space {
	return database.Space{ID: uuid.New()}
}

func TestEffectiveACL_RootAnchorGovernsDescendants(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root, Target: "/acl/root"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"item/X")
	if err != nil || !ok || href != "/acl/root" {
		t.Fatalf("got %q/%v/%v", href, ok, err)
	}
}

func TestEffectiveACL_IrrelevantAnchorNeverApplies(t *testing.T) {
	// Regression: a sole ACL link whose anchor is not an ancestor-or-self
	// of the target must not govern it.
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root + "public/", Target: "/acl/public"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"nonpublic")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok {
		t.Fatalf("irrelevant anchor selected: %q", href)
	}
}

func TestEffectiveACL_PartialSegmentAnchorNeverApplies(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root + "public", Target: "/acl/public"},
	}})

	// "public" as an anchor must not govern "publicity".
	_, ok, err := r.EffectiveACL(context.Background(), sp, root+"publicity")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok {
		t.Fatal("raw string prefix matched across a segment boundary")
	}
}

func TestEffectiveACL_MostSpecificWins(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root, Target: "/acl/root"},
		{Anchor: root + "public/", Target: "/acl/public"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"public/items/stuff/myItem")
	if err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}
	if href != "/acl/public" {
		t.Fatalf("expected most specific anchor to win, got %q", href)
	}
}

func TestEffectiveACL_SelfAnchorBeatsContainer(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root + "public/", Target: "/acl/public"},
		{Anchor: root + "public/item", Target: "/acl/item"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"public/item")
	if err != nil || !ok || href != "/acl/item" {
		t.Fatalf("got %q/%v/%v", href, ok, err)
	}
}

func TestEffectiveACL_EqualSpecificityLastDeclaredWins(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root + "public/", Target: "/acl/first"},
		{Anchor: root + "public/", Target: "/acl/second"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"public/item")
	if err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}
	if href != "/acl/second" {
		t.Fatalf("tie-break must be last-declared-wins, got %q", href)
	}
}

func TestEffectiveACL_AnchorWithoutTrailingSlash(t *testing.T) {
	sp := testSpace()
	root := SpaceRoot(sp)
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: root + "public", Target: "/acl/public"},
	}})

	href, ok, err := r.EffectiveACL(context.Background(), sp, root+"public/item")
	if err != nil || !ok || href != "/acl/public" {
		t.Fatalf("container anchor without slash not normalized: %q/%v/%v", href, ok, err)
	}
}

func TestEffectiveACL_NoLinksetMeansDefault(t *testing.T) {
	sp := testSpace()
	r := NewResolver(staticLinks{err: linkset.ErrNotFound})

	_, ok, err := r.EffectiveACL(context.Background(), sp, SpaceRoot(sp)+"item")
	if err != nil {
		t.Fatalf("absent linkset must fold to default, got %v", err)
	}
	if ok {
		t.Fatal("absent linkset produced an effective ACL")
	}
}

func TestEffectiveACL_MalformedLinksetPropagates(t *testing.T) {
	sp := testSpace()
	r := NewResolver(staticLinks{err: linkset.ErrMalformed})

	_, _, err := r.EffectiveACL(context.Background(), sp, SpaceRoot(sp)+"item")
	if !errors.Is(err, linkset.ErrMalformed) {
		t.Fatalf("expected ErrMalformed to propagate, got %v", err)
	}
}

func TestEffectiveACL_TargetOutsideSpace(t *testing.T) {
	sp := testSpace()
	r := NewResolver(staticLinks{links: []linkset.Link{
		{Anchor: SpaceRoot(sp), Target: "/acl/root"},
	}})

	_, ok, err := r.EffectiveACL(context.Background(), sp, "/space/other/item")
	if err != nil || ok {
		t.Fatalf("path outside space resolved: ok=%v err=%v", ok, err)
	}
}
