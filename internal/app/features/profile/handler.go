// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/blob"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxPictureBytes caps profile picture uploads at 5 MiB.
const maxPictureBytes = 5 << 20

type Handler struct {
	Users  *userstore.Store
	Blobs  *blob.Store // nil when no bucket is configured
	Log    *zap.Logger
	ErrLog *httpx.ErrorLogger
}

func NewHandler(users *userstore.Store, blobs *blob.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Blobs:  blobs,
		Log:    logger,
		ErrLog: httpx.NewErrorLogger(logger),
	}
}

type profileResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Points         int    `json:"points"`
	Online         bool   `json:"online"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	FriendCount    int    `json:"friend_count"`
}

func toResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		Points:         u.Points,
		Online:         u.Online,
		ProfilePicture: u.ProfilePicture,
		FriendCount:    len(u.Friends),
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

// ServeMe handles GET /profile: the signed-in user's own profile.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Error(w, http.StatusNotFound, "account no longer exists")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load user", err, "could not load profile")
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(user))
}

type updateRequest struct {
	Username string `json:"username"`
}

// ServeUpdate handles PUT /profile: renames the signed-in user.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req updateRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: bad request body", err, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		httpx.Error(w, http.StatusBadRequest, "username is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.UpdateUsername(ctx, id, req.Username)
	switch {
	case errors.Is(err, userstore.ErrDuplicateUsername):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "profile: update username", err, "could not update profile")
		return
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: reload user", err, "could not load profile")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

// ServePicture handles POST /profile/picture: uploads the raw image body to
// blob storage and records the resulting URL.
func (h *Handler) ServePicture(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if h.Blobs == nil {
		httpx.Error(w, http.StatusNotImplemented, "picture uploads are not configured")
		return
	}

	contentType := r.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		httpx.Error(w, http.StatusUnsupportedMediaType, "picture must be jpeg, png, or webp")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	body := http.MaxBytesReader(w, r.Body, maxPictureBytes)
	url, err := h.Blobs.Put(ctx, id.Hex(), body, contentType)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, "picture exceeds the 5 MB limit")
			return
		}
		h.ErrLog.LogServerError(w, r, "profile: upload picture", err, "could not upload picture")
		return
	}

	if err := h.Users.SetProfilePicture(ctx, id, url); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: save picture url", err, "could not upload picture")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"profile_picture": url})
}

// ServeHeartbeat handles POST /profile/heartbeat: refreshes the presence
// window that keeps the user shown as online.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Heartbeat(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: heartbeat", err, "could not update presence")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
