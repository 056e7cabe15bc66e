package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
)

func TestMemoryStore_SpaceLifecycle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	if _, err := st.GetSpace(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC()
	sp := database.Space{ID: id, Controller: "did:key:zX", LinksetHref: "/space/" + id.String() + "/links/", CreatedAt: now, UpdatedAt: now}
	if err := st.CreateSpace(ctx, sp); err != nil {
		t.Fatalf("CreateSpace: %v", err)
	}
	got, err := st.GetSpace(ctx, id)
	if err != nil {
		t.Fatalf("GetSpace: %v", err)
	}
	if got.Controller != sp.Controller || got.LinksetHref != sp.LinksetHref {
		t.Fatalf("got %+v", got)
	}

	spaces, err := st.ListSpaces(ctx)
	if err != nil || len(spaces) != 1 {
		t.Fatalf("ListSpaces: %v %v", spaces, err)
	}
}

func TestMemoryStore_PutChangedSemantics(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()
	path := "/space/" + id.String() + "/doc"

	changed, err := st.Put(ctx, id, path, []byte(`{"a":1,"b":2}`), "application/json")
	if err != nil || !changed {
		t.Fatalf("first put: changed=%v err=%v", changed, err)
	}

	// Same value, different key order: not a change.
	changed, err = st.Put(ctx, id, path, []byte(`{"b":2,"a":1}`), "application/json")
	if err != nil {
		t.Fatalf("re-put: %v", err)
	}
	if changed {
		t.Fatal("canonically equal re-put reported changed")
	}

	changed, err = st.Put(ctx, id, path, []byte(`{"a":1,"b":3}`), "application/json")
	if err != nil || !changed {
		t.Fatalf("update: changed=%v err=%v", changed, err)
	}

	body, err := st.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"a":1,"b":3}` {
		t.Fatalf("body = %s", body)
	}
}

func TestMemoryStore_GetIsolatesStoredBody(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()
	path := "/space/" + id.String() + "/doc"

	if _, err := st.Put(ctx, id, path, []byte(`"v"`), "application/json"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	body, _ := st.Get(ctx, path)
	body[0] = 'X'
	again, _ := st.Get(ctx, path)
	if string(again) != `"v"` {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestDirectChildren(t *testing.T) {
	root := "/space/abc/"
	paths := []string{
		root + "acl",
		root + "item/X",
		root + "item/Y/Z",
		root + "links/",
		"/space/other/item",
	}
	got := DirectChildren(root, paths)
	want := []string{"acl", "item/", "links/"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if out := DirectChildren(root, nil); len(out) != 0 {
		t.Fatalf("empty input: %v", out)
	}
}
