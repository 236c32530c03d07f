// Package indexes creates the MongoDB indexes the stores rely on. EnsureAll
// runs at startup (EnsureSchema hook); every ensure is idempotent and errors
// are aggregated so startup fails fast with the full picture.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureFriendRequests(ctx, db); err != nil {
		problems = append(problems, "friendRequests: "+err.Error())
	}
	if err := ensureTournaments(ctx, db); err != nil {
		problems = append(problems, "tournaments: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db); err != nil {
		problems = append(problems, "oauthStates: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// users: username and email are uniqueness keys (stored folded, so the
// unique index is effectively case- and accent-insensitive). The username
// index also serves the prefix-range search ordered by username ascending.
func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	})
	return err
}

// friendRequests: the inbox query filters on (to, status); the partial
// unique index allows many closed requests per pair but at most one pending.
func ensureFriendRequests(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("friendRequests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("inbox"),
		},
		{
			Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_pair").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
	})
	return err
}

// tournaments: the listing sorts by scheduled date descending; the status
// worker scans on (status, date).
func ensureTournaments(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("tournaments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("by_date"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("status_sweep"),
		},
	})
	return err
}

// oauthStates: lookup is by state token; the TTL index lets Mongo discard
// expired tokens on its own.
func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("oauthStates").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetName("uniq_state").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("ttl_expiry").SetExpireAfterSeconds(0),
		},
	})
	return err
}
