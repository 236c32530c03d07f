// Package userstore is the identity resolver: it owns the users collection
// and the profile/summary lookups every other engine leans on.
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nabs-75/SkillArena/internal/app/system/normalize"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrEmptyPrefix is returned by SearchByUsernamePrefix for a blank query.
	ErrEmptyPrefix = errors.New("search prefix must not be empty")

	errMissingUsername = errors.New("username is required")
	errMissingEmail    = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user after folding username and email to their
// canonical form. Points start at zero and the friend set empty.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.Email = normalize.Email(u.Email)
	if u.Username == "" {
		return models.User{}, errMissingUsername
	}
	if u.Email == "" {
		return models.User{}, errMissingEmail
	}

	u.Points = 0
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	u.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "uniq_email") {
				return models.User{}, ErrDuplicateEmail
			}
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SearchByUsernamePrefix returns summaries of users whose username starts
// with the folded prefix (case- and accent-insensitive), excluding excludeID,
// ordered by username ascending. An empty prefix is an input error, not an
// empty result.
func (s *Store) SearchByUsernamePrefix(ctx context.Context, prefix string, excludeID primitive.ObjectID, limit int64) ([]models.UserSummary, error) {
	lo, hi := text.PrefixRange(prefix)
	if lo == "" {
		return nil, ErrEmptyPrefix
	}
	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{
		"username": bson.M{"$gte": lo, "$lt": hi},
		"_id":      bson.M{"$ne": excludeID},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"username": 1, "online": 1})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.UserSummary
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summaries resolves ids to display summaries, preserving input order and
// silently dropping ids that no longer resolve (deleted accounts).
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}

	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1, "online": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.UserSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.UserSummary, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]models.UserSummary, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SetOnline flips the presence flag and stamps lastSeenAt.
func (s *Store) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"online":     online,
		"lastSeenAt": time.Now().UTC(),
	}})
	return err
}

// Heartbeat refreshes lastSeenAt and marks the user online.
func (s *Store) Heartbeat(ctx context.Context, id primitive.ObjectID) error {
	return s.SetOnline(ctx, id, true)
}

// MarkStaleOffline clears the online flag for users whose lastSeenAt is older
// than cutoff. Returns how many users were flipped.
func (s *Store) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"online": true, "lastSeenAt": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"online": false}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UpdateUsername renames the user, keeping the folded canonical form.
func (s *Store) UpdateUsername(ctx context.Context, id primitive.ObjectID, username string) error {
	username = normalize.Username(username)
	if username == "" {
		return errMissingUsername
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"username": username}})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateUsername
	}
	return err
}

// SetProfilePicture stores the blob URL for the user's avatar.
func (s *Store) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"profilePicture": url}})
	return err
}

// AddPoints adds delta to the user's points. Negative deltas are clamped so
// points never go below zero.
func (s *Store) AddPoints(ctx context.Context, id primitive.ObjectID, delta int) error {
	if delta >= 0 {
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"points": delta}})
		return err
	}

	// Conditional decrement: only applies while the balance covers it.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "points": bson.M{"$gte": -delta}},
		bson.M{"$inc": bson.M{"points": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the user is gone or the balance is too low; floor at zero.
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"points": 0}})
	}
	return err
}
