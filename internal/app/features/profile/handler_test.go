package profile_test

import (
	"net/http"
	"testing"

	"github.com/nabs-75/SkillArena/internal/app/features/profile"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/indexes"
	"github.com/nabs-75/SkillArena/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	// No blob store: picture uploads answer 501 in this configuration.
	return profile.NewHandler(userstore.New(db), nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestServeMe(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "player", "player@example.com")

	req := testutil.NewAuthenticatedRequest("GET", "/profile", testutil.UserFor(user.ID, "player"))
	rec := testutil.NewRecorder()
	h.ServeMe(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "player")
}

func TestServeMe_RequiresSignIn(t *testing.T) {
	h, _ := newHandler(t)

	rec := testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewRequest("GET", "/profile"))

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeUpdate_Rename(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "oldname", "player@example.com")

	req := testutil.NewJSONRequest("PUT", "/profile", `{"username":"NewName"}`)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, "oldname"))
	rec := testutil.NewRecorder()
	h.ServeUpdate(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "newname")
}

func TestServeUpdate_TakenUsername(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix.CreateUser(ctx, "taken", "other@example.com")
	user := fix.CreateUser(ctx, "mine", "mine@example.com")

	req := testutil.NewJSONRequest("PUT", "/profile", `{"username":"taken"}`)
	req = testutil.WithUser(req, testutil.UserFor(user.ID, "mine"))
	rec := testutil.NewRecorder()
	h.ServeUpdate(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
}

func TestServePicture_NotConfigured(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "player", "player@example.com")

	req := testutil.NewAuthenticatedRequest("POST", "/profile/picture", testutil.UserFor(user.ID, "player"))
	req.Header.Set("Content-Type", "image/png")
	rec := testutil.NewRecorder()
	h.ServePicture(rec, req)

	rec.AssertStatus(t, http.StatusNotImplemented)
}
