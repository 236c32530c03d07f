// internal/app/features/tournaments/handler.go
package tournaments

import (
	"context"
	"errors"
	"net/http"
	"time"

	tournamentstore "github.com/nabs-75/SkillArena/internal/app/store/tournaments"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Tournaments *tournamentstore.Store
	Log         *zap.Logger
	ErrLog      *httpx.ErrorLogger
}

func NewHandler(tournaments *tournamentstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Tournaments: tournaments,
		Log:         logger,
		ErrLog:      httpx.NewErrorLogger(logger),
	}
}

func currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	return id, err == nil
}

// ServeList handles GET /tournaments: all tournaments, date descending.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Tournaments.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tournaments: list", err, "could not load tournaments")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type createRequest struct {
	Name            string    `json:"name"`
	Game            string    `json:"game"`
	Date            time.Time `json:"date"`
	MaxParticipants int       `json:"max_participants"`
	Prize           string    `json:"prize"`
}

// ServeCreate handles POST /tournaments.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "tournaments: bad request body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Tournaments.Create(ctx, models.Tournament{
		Name:            req.Name,
		Game:            req.Game,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
		Prize:           req.Prize,
		CreatedBy:       id,
	})
	if errors.Is(err, tournamentstore.ErrInvalidTournament) {
		httpx.Error(w, http.StatusBadRequest, "name, game, a positive capacity, and a future date are required")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tournaments: create", err, "could not create tournament")
		return
	}

	httpx.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /tournaments/{id}: the tournament with its roster
// resolved to display summaries.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid tournament id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	detail, err := h.Tournaments.GetWithParticipants(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Error(w, http.StatusNotFound, "tournament not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tournaments: load", err, "could not load tournament")
		return
	}

	httpx.JSON(w, http.StatusOK, detail)
}

// ServeRegister handles POST /tournaments/{id}/register: adds the caller to
// the roster, reporting whether they got a slot.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid tournament id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	outcome, err := h.Tournaments.Register(ctx, id, userID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpx.Error(w, http.StatusNotFound, "tournament not found")
		return
	case errors.Is(err, tournamentstore.ErrRegistrationClosed):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "tournaments: register", err, "could not register")
		return
	}

	switch outcome {
	case tournamentstore.Registered:
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "registered"})
	case tournamentstore.AlreadyRegistered:
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "already registered"})
	case tournamentstore.Full:
		httpx.Error(w, http.StatusConflict, "tournament is full")
	}
}
