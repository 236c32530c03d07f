// internal/domain/models/tournament.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TournamentStatus is the lifecycle state of a tournament. Registration is
// only meaningful while open; the status worker advances open -> ongoing ->
// completed as the scheduled time passes.
type TournamentStatus string

const (
	TournamentOpen      TournamentStatus = "open"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s TournamentStatus) IsValid() bool {
	switch s {
	case TournamentOpen, TournamentOngoing, TournamentCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s, or s itself when completed.
func (s TournamentStatus) Next() TournamentStatus {
	switch s {
	case TournamentOpen:
		return TournamentOngoing
	case TournamentOngoing:
		return TournamentCompleted
	}
	return s
}

// Tournament is an organized competition with a bounded roster.
type Tournament struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Game            string               `bson:"game" json:"game"`
	Date            time.Time            `bson:"date" json:"date"` // scheduled start
	Status          TournamentStatus     `bson:"status" json:"status"`
	MaxParticipants int                  `bson:"maxParticipants" json:"max_participants"`
	Participants    []primitive.ObjectID `bson:"participants" json:"participants"`
	Prize           string               `bson:"prize,omitempty" json:"prize,omitempty"`
	CreatedBy       primitive.ObjectID   `bson:"createdBy" json:"created_by"`
	CreatedAt       time.Time            `bson:"createdAt" json:"created_at"`
}

// IsFull reports whether the roster has reached capacity.
func (t *Tournament) IsFull() bool {
	return len(t.Participants) >= t.MaxParticipants
}

// HasParticipant reports whether id is already on the roster.
func (t *Tournament) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range t.Participants {
		if p == id {
			return true
		}
	}
	return false
}
