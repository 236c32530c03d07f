package tournaments_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/nabs-75/SkillArena/internal/app/features/tournaments"
	tournamentstore "github.com/nabs-75/SkillArena/internal/app/store/tournaments"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"github.com/nabs-75/SkillArena/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*tournaments.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := tournamentstore.New(db, userstore.New(db))
	return tournaments.NewHandler(store, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestServeCreate(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fix.CreateUser(ctx, "organizer", "organizer@example.com")
	date := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	req := testutil.NewJSONRequest("POST", "/tournaments",
		`{"name":"Summer Cup","game":"Rocket League","date":"`+date+`","max_participants":16,"prize":"500 points"}`)
	req = testutil.WithUser(req, testutil.UserFor(organizer.ID, "organizer"))
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created models.Tournament
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Status != models.TournamentOpen {
		t.Errorf("expected open status, got %q", created.Status)
	}
	if created.CreatedBy != organizer.ID {
		t.Error("expected creator recorded from the session, not the body")
	}
}

func TestServeCreate_PastDate(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	organizer := fix.CreateUser(ctx, "organizer", "organizer@example.com")
	date := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	req := testutil.NewJSONRequest("POST", "/tournaments",
		`{"name":"Yesterday Cup","game":"Chess","date":"`+date+`","max_participants":8}`)
	req = testutil.WithUser(req, testutil.UserFor(organizer.ID, "organizer"))
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeCreate_RequiresSignIn(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewJSONRequest("POST", "/tournaments", `{"name":"Cup"}`)
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeList(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix.CreateTournament(ctx, "Visible Cup", 8, time.Now().Add(24*time.Hour))

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/tournaments"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Visible Cup")
}

func TestServeGet_WithRoster(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	player := fix.CreateUser(ctx, "player", "player@example.com")
	tourney := fix.CreateTournament(ctx, "Roster Cup", 8, time.Now().Add(24*time.Hour))

	regReq := testutil.NewAuthenticatedRequest("POST", "/tournaments/"+tourney.ID.Hex()+"/register",
		testutil.UserFor(player.ID, "player"))
	regReq = testutil.WithChiURLParam(regReq, "id", tourney.ID.Hex())
	regRec := testutil.NewRecorder()
	h.ServeRegister(regRec, regReq)
	regRec.AssertStatus(t, http.StatusOK)

	getReq := testutil.NewRequest("GET", "/tournaments/"+tourney.ID.Hex())
	getReq = testutil.WithChiURLParam(getReq, "id", tourney.ID.Hex())
	getRec := testutil.NewRecorder()
	h.ServeGet(getRec, getReq)

	getRec.AssertStatus(t, http.StatusOK)
	getRec.AssertContains(t, "player")
}

func TestServeRegister_FullTournament(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u1 := fix.CreateUser(ctx, "one", "one@example.com")
	u2 := fix.CreateUser(ctx, "two", "two@example.com")
	tourney := fix.CreateTournament(ctx, "Tiny Cup", 1, time.Now().Add(24*time.Hour))

	first := testutil.NewAuthenticatedRequest("POST", "/tournaments/"+tourney.ID.Hex()+"/register",
		testutil.UserFor(u1.ID, "one"))
	first = testutil.WithChiURLParam(first, "id", tourney.ID.Hex())
	firstRec := testutil.NewRecorder()
	h.ServeRegister(firstRec, first)
	firstRec.AssertStatus(t, http.StatusOK)

	second := testutil.NewAuthenticatedRequest("POST", "/tournaments/"+tourney.ID.Hex()+"/register",
		testutil.UserFor(u2.ID, "two"))
	second = testutil.WithChiURLParam(second, "id", tourney.ID.Hex())
	secondRec := testutil.NewRecorder()
	h.ServeRegister(secondRec, second)
	secondRec.AssertStatus(t, http.StatusConflict)
	secondRec.AssertContains(t, "full")
}

func TestServeRegister_UnknownTournament(t *testing.T) {
	h, fix := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	player := fix.CreateUser(ctx, "player", "player@example.com")

	req := testutil.NewAuthenticatedRequest("POST", "/tournaments/0123456789abcdef01234567/register",
		testutil.UserFor(player.ID, "player"))
	req = testutil.WithChiURLParam(req, "id", "0123456789abcdef01234567")
	rec := testutil.NewRecorder()
	h.ServeRegister(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}
