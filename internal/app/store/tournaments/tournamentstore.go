// Package tournamentstore is the roster engine: tournament lifecycle and
// capacity-checked registration.
package tournamentstore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/sanitize"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInvalidTournament is returned when Create is given bad fields.
	ErrInvalidTournament = errors.New("tournament has missing or invalid fields")
	// ErrRegistrationClosed is returned when the tournament is past open.
	ErrRegistrationClosed = errors.New("tournament is not open for registration")
)

// RegistrationOutcome classifies what a Register call did.
type RegistrationOutcome int

const (
	// Registered means the user was added to the roster.
	Registered RegistrationOutcome = iota
	// AlreadyRegistered means the user was on the roster before the call.
	AlreadyRegistered
	// Full means the roster was at capacity and the user was not added.
	Full
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("tournaments"), users: users}
}

// Create validates and inserts a tournament. Name and game are sanitized;
// capacity must be positive and the start date strictly in the future.
func (s *Store) Create(ctx context.Context, t models.Tournament) (models.Tournament, error) {
	t.Name = sanitize.Text(t.Name)
	t.Game = sanitize.Text(t.Game)
	t.Prize = sanitize.Text(t.Prize)
	if t.Name == "" || t.Game == "" {
		return models.Tournament{}, ErrInvalidTournament
	}
	if t.MaxParticipants <= 0 {
		return models.Tournament{}, ErrInvalidTournament
	}
	if !t.Date.After(time.Now()) {
		return models.Tournament{}, ErrInvalidTournament
	}

	t.ID = primitive.NewObjectID()
	t.Date = t.Date.UTC()
	t.Status = models.TournamentOpen
	t.Participants = []primitive.ObjectID{}
	t.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Tournament{}, err
	}
	return t, nil
}

// List returns all tournaments, soonest start date last (date descending),
// matching how the listing surface presents them.
func (s *Store) List(ctx context.Context) ([]models.Tournament, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Tournament
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Tournament{}
	}
	return out, nil
}

// GetByID loads a tournament. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tournament, error) {
	var t models.Tournament
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TournamentDetail is a tournament with its roster resolved to summaries.
type TournamentDetail struct {
	models.Tournament
	Roster []models.UserSummary `json:"roster"`
}

// GetWithParticipants loads a tournament and resolves its roster to display
// summaries, in registration order.
func (s *Store) GetWithParticipants(ctx context.Context, id primitive.ObjectID) (*TournamentDetail, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.users.Summaries(ctx, t.Participants)
	if err != nil {
		return nil, err
	}
	return &TournamentDetail{Tournament: *t, Roster: roster}, nil
}

// Register adds userID to the roster if the tournament is open, the user is
// not already registered, and the roster is under capacity — in that order of
// precedence: an already-registered user on a full tournament reports
// AlreadyRegistered, not Full. The add itself is a single conditional update,
// so two racing registrations for the last slot cannot both win.
func (s *Store) Register(ctx context.Context, tournamentID, userID primitive.ObjectID) (RegistrationOutcome, error) {
	t, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	if t.Status != models.TournamentOpen {
		return 0, ErrRegistrationClosed
	}
	if t.HasParticipant(userID) {
		return AlreadyRegistered, nil
	}
	if t.IsFull() {
		return Full, nil
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":          tournamentID,
			"status":       models.TournamentOpen,
			"participants": bson.M{"$ne": userID},
			"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$maxParticipants"}},
		},
		bson.M{"$push": bson.M{"participants": userID}})
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount == 1 {
		return Registered, nil
	}

	// The guarded update matched nothing; re-read to say why.
	t, err = s.GetByID(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	switch {
	case t.HasParticipant(userID):
		return AlreadyRegistered, nil
	case t.Status != models.TournamentOpen:
		return 0, ErrRegistrationClosed
	default:
		return Full, nil
	}
}

// AdvancePastDue moves open tournaments whose start date has passed to
// ongoing, and ongoing tournaments past date+runtime to completed. Returns
// how many documents changed and the rosters of the tournaments that just
// completed, so the caller can award participation points.
func (s *Store) AdvancePastDue(ctx context.Context, now time.Time, runtime time.Duration) (int64, []primitive.ObjectID, error) {
	var changed int64

	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.TournamentOpen, "date": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": models.TournamentOngoing}})
	if err != nil {
		return changed, nil, err
	}
	changed += res.ModifiedCount

	// Completion goes one document at a time: the guarded update keeps a
	// racing sweep from crediting the same roster twice.
	cur, err := s.c.Find(ctx,
		bson.M{"status": models.TournamentOngoing, "date": bson.M{"$lte": now.Add(-runtime)}})
	if err != nil {
		return changed, nil, err
	}
	defer cur.Close(ctx)

	var due []models.Tournament
	if err := cur.All(ctx, &due); err != nil {
		return changed, nil, err
	}

	var finishers []primitive.ObjectID
	for _, t := range due {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": t.ID, "status": models.TournamentOngoing},
			bson.M{"$set": bson.M{"status": models.TournamentCompleted}})
		if err != nil {
			return changed, finishers, err
		}
		if res.ModifiedCount == 1 {
			changed++
			finishers = append(finishers, t.Participants...)
		}
	}

	return changed, finishers, nil
}
