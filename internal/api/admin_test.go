package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAdminListSpaces(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	t.Setenv("STRATA_ADMIN_KEY_HASH", string(hash))

	r, _ := newTestRouter(t)
	keyID, _ := newController(t)
	createSpace(t, r, keyID)

	// No key.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/spaces", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing admin key: expected 401, got %d", w.Code)
	}

	// Wrong key.
	req := httptest.NewRequest(http.MethodGet, "/admin/spaces", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong admin key: expected 401, got %d", w.Code)
	}

	// Right key.
	req = httptest.NewRequest(http.MethodGet, "/admin/spaces", nil)
	req.Header.Set("X-Admin-Key", "letmein")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid admin key: expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminDisabledWithoutConfig(t *testing.T) {
	t.Setenv("STRATA_ADMIN_KEY_HASH", "")

	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/spaces", nil)
	req.Header.Set("X-Admin-Key", "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin disabled: expected 403, got %d", w.Code)
	}
}
