// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, Log: logger}
}

// Serve handles POST /auth/logout: clears the session and marks the user
// offline. Logging out without a session still succeeds.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		if id, err := primitive.ObjectIDFromHex(user.ID); err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()
			if err := h.Users.SetOnline(ctx, id, false); err != nil {
				h.Log.Warn("logout: mark offline failed", zap.Error(err))
			}
		}
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session failed", zap.Error(err))
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
