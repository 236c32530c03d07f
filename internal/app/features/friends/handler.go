// internal/app/features/friends/handler.go
package friends

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	friendstore "github.com/nabs-75/SkillArena/internal/app/store/friends"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/normalize"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Friends *friendstore.Store
	Users   *userstore.Store
	Log     *zap.Logger
	ErrLog  *httpx.ErrorLogger
}

func NewHandler(friends *friendstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Friends: friends,
		Users:   users,
		Log:     logger,
		ErrLog:  httpx.NewErrorLogger(logger),
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

// ServeList handles GET /friends: the caller's friends as display summaries.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	friends, err := h.Friends.ListFriends(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Error(w, http.StatusNotFound, "account no longer exists")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "friends: list", err, "could not load friends")
		return
	}

	httpx.JSON(w, http.StatusOK, friends)
}

// ServeInbox handles GET /friends/requests: pending requests addressed to
// the caller, newest first.
func (h *Handler) ServeInbox(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inbox, err := h.Friends.ListIncoming(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "friends: inbox", err, "could not load requests")
		return
	}

	httpx.JSON(w, http.StatusOK, inbox)
}

type sendRequest struct {
	To string `json:"to"` // recipient user id
}

// ServeSend handles POST /friends/requests: sends (or re-surfaces) a pending
// friend request to the given user.
func (h *Handler) ServeSend(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req sendRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "friends: bad request body", err, "invalid request body")
		return
	}
	to, err := primitive.ObjectIDFromHex(req.To)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Friends.SendRequest(ctx, id, to)
	switch {
	case errors.Is(err, friendstore.ErrSelfRequest):
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, friendstore.ErrAlreadyFriends):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		httpx.Error(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "friends: send request", err, "could not send request")
		return
	}

	httpx.JSON(w, http.StatusCreated, created)
}

// ServeAccept handles POST /friends/requests/{id}/accept.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Friends.Accept, "accepted")
}

// ServeReject handles POST /friends/requests/{id}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Friends.Reject, "rejected")
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, primitive.ObjectID, primitive.ObjectID) error, outcome string) {

	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	requestID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = fn(ctx, requestID, id)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpx.Error(w, http.StatusNotFound, "friend request not found")
		return
	case errors.Is(err, friendstore.ErrNotRecipient):
		httpx.Error(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, friendstore.ErrRequestClosed):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "friends: resolve request", err, "could not update request")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"status": outcome})
}

// ServeSearch handles GET /users/search?q=…: username prefix search for the
// add-friend screen, excluding the caller.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q := normalize.QueryParam(r.URL.Query().Get("q"))
	results, err := h.Users.SearchByUsernamePrefix(ctx, q, id, limit)
	if errors.Is(err, userstore.ErrEmptyPrefix) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "friends: search users", err, "could not search users")
		return
	}

	httpx.JSON(w, http.StatusOK, results)
}
