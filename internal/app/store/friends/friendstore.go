// Package friendstore is the relationship engine: friend requests and the
// symmetric friend links they produce on acceptance.
package friendstore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/txn"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrSelfRequest is returned when a user tries to friend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrAlreadyFriends is returned when the two users are already linked.
	ErrAlreadyFriends = errors.New("users are already friends")
	// ErrRequestClosed is returned when acting on a rejected request.
	ErrRequestClosed = errors.New("friend request is no longer pending")
	// ErrNotRecipient is returned when someone other than the recipient
	// tries to resolve a request.
	ErrNotRecipient = errors.New("only the recipient can resolve this request")
)

type Store struct {
	db    *mongo.Database
	c     *mongo.Collection
	users *userstore.Store
	log   *zap.Logger
}

func New(db *mongo.Database, users *userstore.Store, log *zap.Logger) *Store {
	return &Store{
		db:    db,
		c:     db.Collection("friendRequests"),
		users: users,
		log:   log,
	}
}

// SendRequest creates a pending request from one user to another. Sending
// again while a pending request exists returns the existing request rather
// than a duplicate; the partial unique index backs this up under races.
func (s *Store) SendRequest(ctx context.Context, from, to primitive.ObjectID) (models.FriendRequest, error) {
	if from == to {
		return models.FriendRequest{}, ErrSelfRequest
	}

	// The recipient must exist and must not already be a friend.
	sender, err := s.users.GetByID(ctx, from)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if sender.HasFriend(to) {
		return models.FriendRequest{}, ErrAlreadyFriends
	}
	if _, err := s.users.GetByID(ctx, to); err != nil {
		return models.FriendRequest{}, err
	}

	if existing, err := s.pendingBetween(ctx, from, to); err == nil {
		return existing, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.FriendRequest{}, err
	}

	req := models.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    models.RequestPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost the race to a concurrent send; hand back the winner.
			return s.pendingBetween(ctx, from, to)
		}
		return models.FriendRequest{}, err
	}
	return req, nil
}

func (s *Store) pendingBetween(ctx context.Context, from, to primitive.ObjectID) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.c.FindOne(ctx, bson.M{
		"from":   from,
		"to":     to,
		"status": models.RequestPending,
	}).Decode(&req)
	return req, err
}

// GetRequest loads a request by id. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetRequest(ctx context.Context, id primitive.ObjectID) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	return req, err
}

// Accept marks the request accepted and links both users' friend sets in one
// transaction. Accepting an already-accepted request is a no-op; accepting a
// rejected one fails with ErrRequestClosed. Only the recipient may accept.
func (s *Store) Accept(ctx context.Context, requestID, actorID primitive.ObjectID) error {
	return s.resolve(ctx, requestID, actorID, models.RequestAccepted)
}

// Reject marks the request rejected without touching either friend set.
// Rejecting an already-rejected request is a no-op.
func (s *Store) Reject(ctx context.Context, requestID, actorID primitive.ObjectID) error {
	return s.resolve(ctx, requestID, actorID, models.RequestRejected)
}

func (s *Store) resolve(ctx context.Context, requestID, actorID primitive.ObjectID, target models.RequestStatus) error {
	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.To != actorID {
		return ErrNotRecipient
	}
	if req.Status == target {
		// Repeated resolution with the same outcome is harmless.
		return nil
	}
	if !req.Status.CanTransitionTo(target) {
		return ErrRequestClosed
	}

	if target == models.RequestRejected {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": requestID, "status": models.RequestPending},
			bson.M{"$set": bson.M{"status": models.RequestRejected}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Raced with another resolution; re-read to classify.
			cur, err := s.GetRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if cur.Status == models.RequestRejected {
				return nil
			}
			return ErrRequestClosed
		}
		return nil
	}

	// Acceptance touches three documents; keep them in step.
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": requestID, "status": models.RequestPending},
			bson.M{"$set": bson.M{"status": models.RequestAccepted}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Raced with another resolution; re-read to classify.
			cur, err := s.GetRequest(ctx, requestID)
			if err != nil {
				return err
			}
			if cur.Status == models.RequestAccepted {
				return nil
			}
			return ErrRequestClosed
		}

		users := s.db.Collection("users")
		if _, err := users.UpdateOne(ctx,
			bson.M{"_id": req.From},
			bson.M{"$addToSet": bson.M{"friends": req.To}}); err != nil {
			return err
		}
		_, err = users.UpdateOne(ctx,
			bson.M{"_id": req.To},
			bson.M{"$addToSet": bson.M{"friends": req.From}})
		return err
	})
}

// ListIncoming returns pending requests addressed to userID, newest first,
// with the sender's display summary attached.
func (s *Store) ListIncoming(ctx context.Context, userID primitive.ObjectID) ([]models.IncomingRequest, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"to": userID, "status": models.RequestPending},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.FriendRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.From)
	}
	senders, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.UserSummary, len(senders))
	for _, u := range senders {
		byID[u.ID] = u
	}

	out := make([]models.IncomingRequest, 0, len(reqs))
	for _, r := range reqs {
		sender, ok := byID[r.From]
		if !ok {
			// Sender account is gone; the request is not actionable.
			continue
		}
		out = append(out, models.IncomingRequest{
			ID:        r.ID,
			From:      sender,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// ListFriends returns the user's friends as display summaries.
func (s *Store) ListFriends(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.users.Summaries(ctx, u.Friends)
}
