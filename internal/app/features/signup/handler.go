// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"github.com/nabs-75/SkillArena/internal/domain/models"
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

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signedInResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Serve handles POST /auth/signup: creates the account, hashes the password,
// and signs the new user in.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "signup: bad request body", err, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		httpx.Error(w, http.StatusBadRequest, "username, email, and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "signup: hash password", err, "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateUsername), errors.Is(err, userstore.ErrDuplicateEmail):
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "signup: create user", err, "could not create account")
		return
	}

	sessionUser := auth.SessionUser{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.ErrLog.LogServerError(w, r, "signup: establish session", err, "could not create account")
		return
	}

	if err := h.Users.SetOnline(ctx, user.ID, true); err != nil {
		h.Log.Warn("signup: mark online failed", zap.Error(err))
	}

	httpx.JSON(w, http.StatusCreated, signedInResponse{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	})
}
