// internal/domain/models/friendrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a friend request.
// pending -> accepted | rejected; both outcomes are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestPending && next.Terminal()
}

// FriendRequest records one invitation from one user to another. Requests get
// their own generated id; at most one pending request may exist per
// (from, to) pair, enforced by a partial unique index.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Status    RequestStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// IncomingRequest is a pending request shaped for the recipient's inbox,
// with the sender resolved to a display summary.
type IncomingRequest struct {
	ID        primitive.ObjectID `json:"id"`
	From      UserSummary        `json:"from"`
	CreatedAt time.Time          `json:"created_at"`
}
