package login_test

import (
	"net/http"
	"testing"

	"github.com/nabs-75/SkillArena/internal/app/features/login"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"github.com/nabs-75/SkillArena/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newHandler(t *testing.T) (*login.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)

	sessionMgr, err := auth.NewSessionManager("test-session-key-0123456789-abcdefghij", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager init failed: %v", err)
	}
	return login.NewHandler(users, sessionMgr, zap.NewNop()), users
}

func createAccount(t *testing.T, users *userstore.Store, email, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	user, err := users.Create(ctx, models.User{
		Username:     "player",
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestServe_Success(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "player@example.com", "correct-horse")

	req := testutil.NewJSONRequest("POST", "/auth/login", `{"email":"Player@Example.com","password":"correct-horse"}`)
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "player")

	// A session cookie must be set.
	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "test-session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie on successful login")
	}
}

func TestServe_WrongPassword(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "player@example.com", "correct-horse")

	req := testutil.NewJSONRequest("POST", "/auth/login", `{"email":"player@example.com","password":"wrong"}`)
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServe_UnknownEmail(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "player@example.com", "correct-horse")

	req := testutil.NewJSONRequest("POST", "/auth/login", `{"email":"nobody@example.com","password":"whatever"}`)
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	// Same status as a wrong password, so accounts cannot be probed.
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServe_BadBody(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewJSONRequest("POST", "/auth/login", `{"email":`)
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
