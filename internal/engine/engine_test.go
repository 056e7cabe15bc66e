package engine

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/httpsig"
	"github.com/strataspace/strata-backend/internal/linkset"
	"github.com/strataspace/strata-backend/internal/store"
)

const controller = "did:key:z6MkTestController"

// newEngine seeds a memory store with a space whose linkset is the given
// document body (nil for no linkset at all).
func newEngine(t *testing.T, linksetBody []byte) (*Engine, database.Space, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	sp := database.Space{ID: uuid.New(), Controller: controller}
	sp.LinksetHref = acl.SpaceRoot(sp) + "links/"
	if err := st.CreateSpace(context.Background(), sp); err != nil {
		t.Fatalf("create space: %v", err)
	}
	if linksetBody != nil {
		if _, err := st.Put(context.Background(), sp.ID, sp.LinksetHref, linksetBody, "application/linkset+json"); err != nil {
			t.Fatalf("put linkset: %v", err)
		}
	}
	eng := New(acl.NewResolver(linkset.NewAccessor(st)), acl.NewInterpreter(st))
	return eng, sp, st
}

func TestDecide_DefaultDeny(t *testing.T) {
	eng, sp, _ := newEngine(t, nil)
	target := acl.SpaceRoot(sp) + "item"

	for _, id := range []httpsig.Identity{
		httpsig.Anonymous,
		httpsig.NewIdentity("did:key:z6MkSomeoneElse"),
	} {
		for _, method := range []string{http.MethodGet, http.MethodPut} {
			d, err := eng.Decide(context.Background(), sp, method, target, id)
			if err != nil {
				t.Fatalf("%s %s: %v", id, method, err)
			}
			if d.Allow {
				t.Fatalf("%s %s allowed without any ACL", id, method)
			}
		}
	}
}

func TestDecide_ControllerAlwaysPasses(t *testing.T) {
	eng, sp, _ := newEngine(t, nil)
	target := acl.SpaceRoot(sp) + "deep/nested/item"

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		d, err := eng.Decide(context.Background(), sp, method, target, httpsig.NewIdentity(controller))
		if err != nil || !d.Allow {
			t.Fatalf("controller %s denied: %+v err=%v", method, d, err)
		}
	}
}

func TestDecide_OpenReadGrantsAnonymousRead(t *testing.T) {
	eng, sp, st := newEngine(t, nil)
	root := acl.SpaceRoot(sp)
	body := []byte(`{"linkset":[{"anchor":"` + root + `","acl":[{"href":"` + root + `acl"}]}]}`)
	if _, err := st.Put(context.Background(), sp.ID, sp.LinksetHref, body, "application/linkset+json"); err != nil {
		t.Fatalf("put linkset: %v", err)
	}
	if _, err := st.Put(context.Background(), sp.ID, root+"acl", []byte(`{"type":"PublicCanRead"}`), "application/json"); err != nil {
		t.Fatalf("put acl: %v", err)
	}

	d, err := eng.Decide(context.Background(), sp, http.MethodGet, root+"item/X", httpsig.Anonymous)
	if err != nil || !d.Allow {
		t.Fatalf("anonymous read denied under open-read: %+v err=%v", d, err)
	}

	// Open read never grants write.
	d, err = eng.Decide(context.Background(), sp, http.MethodPut, root+"item/X", httpsig.Anonymous)
	if err != nil || d.Allow {
		t.Fatalf("anonymous write allowed under open-read: %+v err=%v", d, err)
	}
}

func TestDecide_MalformedLinksetIsHardError(t *testing.T) {
	eng, sp, _ := newEngine(t, []byte(`{"linkset":`))

	d, err := eng.Decide(context.Background(), sp, http.MethodGet, acl.SpaceRoot(sp)+"item", httpsig.Anonymous)
	if !errors.Is(err, linkset.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if d.Allow {
		t.Fatal("malformed linkset must never allow")
	}
}

func TestModeForMethod(t *testing.T) {
	reads := []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	writes := []string{http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete, "BREW"}
	for _, m := range reads {
		if ModeForMethod(m) != acl.ModeRead {
			t.Errorf("%s: expected read", m)
		}
	}
	for _, m := range writes {
		if ModeForMethod(m) != acl.ModeWrite {
			t.Errorf("%s: expected write", m)
		}
	}
}
