package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "skillarena-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	m := newManager(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	user := auth.SessionUser{ID: "64f0c0ffee", Username: "shadowfox", Email: "fox@example.com"}
	if err := m.SignIn(rec, req, user); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	// Replay the cookie through LoadSessionUser.
	var got *auth.SessionUser
	h := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req2 := httptest.NewRequest("GET", "/profile", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after sign-in")
	}
	if got.ID != user.ID || got.Username != user.Username {
		t.Errorf("got %+v, want %+v", got, user)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	m := newManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := m.SignIn(rec, req, auth.SessionUser{ID: "abc"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if err := m.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	found := false
	for _, c := range rec2.Result().Cookies() {
		if c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie to be expired on sign-out")
	}
}

func TestRequireSignedIn(t *testing.T) {
	called := false
	h := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/friends", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous request: got status %d, want 401", rec.Code)
	}
	if called {
		t.Error("handler ran for anonymous request")
	}

	rec = httptest.NewRecorder()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/friends", nil), &auth.SessionUser{ID: "abc"})
	h.ServeHTTP(rec, req)
	if !called {
		t.Error("handler did not run for signed-in request")
	}
}
