// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *httpx.ErrorLogger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     httpx.NewErrorLogger(logger),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Serve handles POST /auth/login. Unknown email and wrong password produce
// the same 401 so the endpoint cannot be used to probe for accounts.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: bad request body", err, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: lookup user", err, "could not sign in")
		return
	}

	if user.AuthMethod != "password" || user.PasswordHash == "" {
		httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	sessionUser := auth.SessionUser{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.ErrLog.LogServerError(w, r, "login: establish session", err, "could not sign in")
		return
	}

	if err := h.Users.SetOnline(ctx, user.ID, true); err != nil {
		h.Log.Warn("login: mark online failed", zap.Error(err))
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	})
}
