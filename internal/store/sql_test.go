package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSQLStore_GetSpace(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, controller, linkset_href, created_at, updated_at FROM spaces WHERE id=$1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "controller", "linkset_href", "created_at", "updated_at"}).
			AddRow(id, "did:key:zExample", "/space/"+id.String()+"/links/", now, now))

	sp, err := st.GetSpace(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSpace: %v", err)
	}
	if sp.Controller != "did:key:zExample" {
		t.Fatalf("controller = %q", sp.Controller)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStore_GetSpace_NotFound(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, controller, linkset_href, created_at, updated_at FROM spaces WHERE id=$1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := st.GetSpace(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_Put_FirstWrite(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	path := "/space/" + id.String() + "/item"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM resources WHERE path=$1`)).
		WithArgs(path).
		WillReturnRows(sqlmock.NewRows([]string{"body"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO resources`)).
		WithArgs(path, id, []byte(`{"a":1}`), "application/json", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	changed, err := st.Put(context.Background(), id, path, []byte(`{"a":1}`), "application/json")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !changed {
		t.Fatal("first write should report changed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStore_Put_IdenticalBodyIsNoop(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	path := "/space/" + id.String() + "/item"

	// Same JSON value with different key order still counts as unchanged.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM resources WHERE path=$1`)).
		WithArgs(path).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"b":2,"a":1}`)))

	changed, err := st.Put(context.Background(), id, path, []byte(`{"a":1,"b":2}`), "application/json")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if changed {
		t.Fatal("identical body should not report changed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStore_Put_OverwriteChangedBody(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	path := "/space/" + id.String() + "/item"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM resources WHERE path=$1`)).
		WithArgs(path).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"a":1}`)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO resources`)).
		WithArgs(path, id, []byte(`{"a":2}`), "application/json", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	changed, err := st.Put(context.Background(), id, path, []byte(`{"a":2}`), "application/json")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !changed {
		t.Fatal("new body should report changed")
	}
}

func TestSQLStore_ListChildren(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()
	root := "/space/" + id.String() + "/"

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT path FROM resources WHERE path LIKE $1 || '%' ORDER BY path`)).
		WithArgs(root).
		WillReturnRows(sqlmock.NewRows([]string{"path"}).
			AddRow(root + "acl").
			AddRow(root + "item/X").
			AddRow(root + "item/Y").
			AddRow(root + "links/"))

	children, err := st.ListChildren(context.Background(), root)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	want := []string{"acl", "item/", "links/"}
	if len(children) != len(want) {
		t.Fatalf("children = %v, want %v", children, want)
	}
	for i := range want {
		if children[i] != want[i] {
			t.Fatalf("children = %v, want %v", children, want)
		}
	}
}
