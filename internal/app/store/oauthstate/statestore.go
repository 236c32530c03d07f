// Package oauthstate persists short-lived OAuth state tokens so callbacks can
// be validated across instances.
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrInvalidState is returned when a state token is unknown or expired.
var ErrInvalidState = errors.New("oauth state is invalid or expired")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauthStates")}
}

type stateDoc struct {
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// Save records a state token until expiresAt.
func (s *Store) Save(ctx context.Context, state string, expiresAt time.Time) error {
	_, err := s.c.InsertOne(ctx, stateDoc{
		State:     state,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	})
	return err
}

// Consume validates and deletes a state token in one step, so each state can
// authorize at most one callback.
func (s *Store) Consume(ctx context.Context, state string) error {
	res := s.c.FindOneAndDelete(ctx, bson.M{
		"state":     state,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidState
		}
		return err
	}
	return nil
}
