package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given username and email.
// Username and email are stored as given, so pass already-folded values.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      email,
		AuthMethod: "password",
		Points:     0,
		Friends:    []primitive.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateOnlineUser inserts a test user flagged as online with a fresh
// lastSeenAt.
func (f *Fixtures) CreateOnlineUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, username, email)
	now := time.Now().UTC()
	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"online": true, "lastSeenAt": now}})
	if err != nil {
		f.t.Fatalf("failed to mark test user online: %v", err)
	}
	user.Online = true
	user.LastSeenAt = &now
	return user
}

// CreateFriendRequest inserts a friend request with the given status.
func (f *Fixtures) CreateFriendRequest(ctx context.Context, from, to primitive.ObjectID, status models.RequestStatus) models.FriendRequest {
	f.t.Helper()

	req := models.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("friendRequests").InsertOne(ctx, req)
	if err != nil {
		f.t.Fatalf("failed to create test friend request: %v", err)
	}

	return req
}

// MakeFriends links two users symmetrically without going through the
// request flow.
func (f *Fixtures) MakeFriends(ctx context.Context, a, b primitive.ObjectID) {
	f.t.Helper()

	users := f.db.Collection("users")
	if _, err := users.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$addToSet": bson.M{"friends": b}}); err != nil {
		f.t.Fatalf("failed to link friends: %v", err)
	}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$addToSet": bson.M{"friends": a}}); err != nil {
		f.t.Fatalf("failed to link friends: %v", err)
	}
}

// CreateTournament inserts a tournament with the given capacity and start
// date. Status is derived the way the application derives it: open.
func (f *Fixtures) CreateTournament(ctx context.Context, name string, maxParticipants int, date time.Time) models.Tournament {
	f.t.Helper()

	tourney := models.Tournament{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Game:            "Test Game",
		Date:            date.UTC(),
		Status:          models.TournamentOpen,
		MaxParticipants: maxParticipants,
		Participants:    []primitive.ObjectID{},
		CreatedAt:       time.Now().UTC(),
	}

	_, err := f.db.Collection("tournaments").InsertOne(ctx, tourney)
	if err != nil {
		f.t.Fatalf("failed to create test tournament: %v", err)
	}

	return tourney
}

// CreateTournamentWithStatus inserts a tournament in an explicit lifecycle
// state, for exercising the status worker and registration guards.
func (f *Fixtures) CreateTournamentWithStatus(ctx context.Context, name string, status models.TournamentStatus, date time.Time) models.Tournament {
	f.t.Helper()

	tourney := models.Tournament{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Game:            "Test Game",
		Date:            date.UTC(),
		Status:          status,
		MaxParticipants: 16,
		Participants:    []primitive.ObjectID{},
		CreatedAt:       time.Now().UTC(),
	}

	_, err := f.db.Collection("tournaments").InsertOne(ctx, tourney)
	if err != nil {
		f.t.Fatalf("failed to create test tournament: %v", err)
	}

	return tourney
}
