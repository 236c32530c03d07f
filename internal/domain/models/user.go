// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a player profile. The friend set is stored on the user document
// itself (symmetric by construction: accepting a request updates both sides).
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username       string               `bson:"username" json:"username"` // unique, folded
	Email          string               `bson:"email" json:"email"`       // unique, folded
	PasswordHash   string               `bson:"passwordHash,omitempty" json:"-"`
	AuthMethod     string               `bson:"authMethod,omitempty" json:"auth_method,omitempty"` // password | google
	Points         int                  `bson:"points" json:"points"`
	Friends        []primitive.ObjectID `bson:"friends" json:"friends"`
	Online         bool                 `bson:"online" json:"online"`
	LastSeenAt     *time.Time           `bson:"lastSeenAt,omitempty" json:"last_seen_at,omitempty"`
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profile_picture,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

// UserSummary is the display projection used in friend lists, search
// results, and tournament rosters.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Online   bool               `bson:"online" json:"online"`
}

// HasFriend reports whether id is already in the user's friend set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
