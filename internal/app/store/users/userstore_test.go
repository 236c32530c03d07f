package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/indexes"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"github.com/nabs-75/SkillArena/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Username:     "ProGamer",
		Email:        "Pro@Example.com",
		PasswordHash: "not-a-real-hash",
		AuthMethod:   "password",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Username != "progamer" {
		t.Errorf("expected lowercase username, got %q", created.Username)
	}
	if created.Email != "pro@example.com" {
		t.Errorf("expected lowercase email, got %q", created.Email)
	}
	if created.Points != 0 {
		t.Errorf("expected points to start at 0, got %d", created.Points)
	}
	if created.Friends == nil || len(created.Friends) != 0 {
		t.Error("expected empty friends list")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_FoldsDiacritics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Username:   "Müller",
		Email:      "José@Example.com",
		AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Username != "muller" {
		t.Errorf("expected folded username, got %q", created.Username)
	}
	if created.Email != "jose@example.com" {
		t.Errorf("expected folded email, got %q", created.Email)
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Username: "taken", Email: "a@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same username with different case must still collide.
	_, err := store.Create(ctx, models.User{Username: "TAKEN", Email: "b@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Username: "first", Email: "same@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.User{Username: "second", Email: "Same@Example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fix.CreateUser(ctx, "lookup", "lookup@example.com")

	got, err := store.GetByEmail(ctx, "LookUp@Example.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected user %s, got %s", created.ID.Hex(), got.ID.Hex())
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown email, got %v", err)
	}
}

func TestStore_SearchByUsernamePrefix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fix.CreateUser(ctx, "alice", "alice@example.com")
	fix.CreateUser(ctx, "alicia", "alicia@example.com")
	fix.CreateUser(ctx, "albert", "albert@example.com")
	fix.CreateUser(ctx, "bob", "bob@example.com")

	t.Run("matches prefix case-insensitively", func(t *testing.T) {
		got, err := store.SearchByUsernamePrefix(ctx, "ALI", primitive.NewObjectID(), 20)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 results, got %d", len(got))
		}
		if got[0].Username != "alice" || got[1].Username != "alicia" {
			t.Errorf("expected [alice alicia], got [%s %s]", got[0].Username, got[1].Username)
		}
	})

	t.Run("excludes the searching user", func(t *testing.T) {
		got, err := store.SearchByUsernamePrefix(ctx, "ali", alice.ID, 20)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 1 || got[0].Username != "alicia" {
			t.Errorf("expected only alicia, got %v", got)
		}
	})

	t.Run("empty prefix is an error", func(t *testing.T) {
		if _, err := store.SearchByUsernamePrefix(ctx, "   ", alice.ID, 20); !errors.Is(err, userstore.ErrEmptyPrefix) {
			t.Errorf("expected ErrEmptyPrefix, got %v", err)
		}
	})

	t.Run("punctuation matches literally", func(t *testing.T) {
		got, err := store.SearchByUsernamePrefix(ctx, ".*", alice.ID, 20)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no results for .*, got %d", len(got))
		}
	})

	t.Run("accented prefix folds to the stored form", func(t *testing.T) {
		got, err := store.SearchByUsernamePrefix(ctx, "ÁLI", primitive.NewObjectID(), 20)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 results, got %d", len(got))
		}
	})
}

func TestStore_Summaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u1 := fix.CreateUser(ctx, "one", "one@example.com")
	u2 := fix.CreateUser(ctx, "two", "two@example.com")
	deleted := primitive.NewObjectID()

	got, err := store.Summaries(ctx, []primitive.ObjectID{u2.ID, deleted, u1.ID})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}

	// Deleted ids drop out silently and input order is preserved.
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].Username != "two" || got[1].Username != "one" {
		t.Errorf("expected [two one], got [%s %s]", got[0].Username, got[1].Username)
	}
}

func TestStore_Presence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "ghost", "ghost@example.com")

	if err := store.Heartbeat(ctx, user.ID); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Online {
		t.Error("expected user to be online after heartbeat")
	}
	if got.LastSeenAt == nil || got.LastSeenAt.IsZero() {
		t.Error("expected lastSeenAt to be stamped")
	}

	// A stale heartbeat gets swept offline; a fresh one does not.
	n, err := store.MarkStaleOffline(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("MarkStaleOffline failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users swept, got %d", n)
	}

	n, err = store.MarkStaleOffline(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("MarkStaleOffline failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user swept, got %d", n)
	}
	got, err = store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Online {
		t.Error("expected user to be offline after sweep")
	}
}

func TestStore_AddPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fix := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fix.CreateUser(ctx, "scorer", "scorer@example.com")

	if err := store.AddPoints(ctx, user.ID, 50); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	if err := store.AddPoints(ctx, user.ID, -100); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Points != 0 {
		t.Errorf("expected points floored at 0, got %d", got.Points)
	}
}
