// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nabs-75/SkillArena/internal/app/store/oauthstate"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/httpx"
	"github.com/nabs-75/SkillArena/internal/app/system/timeouts"
	"github.com/nabs-75/SkillArena/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth sign-in.
type Handler struct {
	Users      *userstore.Store
	States     *oauthstate.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *httpx.ErrorLogger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://skillarena.app/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(users *userstore.Store, states *oauthstate.Store, sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		States:       states,
		SessionMgr:   sessionMgr,
		Log:          logger,
		ErrLog:       httpx.NewErrorLogger(logger),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// ServeLogin handles GET /auth/google: saves a single-use state token and
// redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		httpx.Error(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		h.ErrLog.LogServerError(w, r, "oauth: generate state", errors.New("no entropy available"), "could not start sign-in")
		return
	}
	state := fmt.Sprintf("%x", raw)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, time.Now().UTC().Add(10*time.Minute)); err != nil {
		h.ErrLog.LogServerError(w, r, "oauth: save state", err, "could not start sign-in")
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates state, exchanges
// the code, fetches the Google profile, provisions the account on first
// sign-in, and establishes the session.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		httpx.Error(w, http.StatusUnauthorized, "google sign-in was denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	state := r.URL.Query().Get("state")
	if state == "" {
		httpx.Error(w, http.StatusBadRequest, "missing state parameter")
		return
	}
	if err := h.States.Consume(ctx, state); err != nil {
		if errors.Is(err, oauthstate.ErrInvalidState) {
			httpx.Error(w, http.StatusUnauthorized, "sign-in attempt expired, try again")
			return
		}
		h.ErrLog.LogServerError(w, r, "oauth: validate state", err, "could not complete sign-in")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.Error(w, http.StatusBadRequest, "missing code parameter")
		return
	}
	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "oauth: exchange code", err, "could not complete sign-in")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "oauth: fetch user info", err, "could not complete sign-in")
		return
	}

	user, err := h.findOrCreateUser(ctx, googleUser)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "oauth: resolve user", err, "could not complete sign-in")
		return
	}

	sessionUser := auth.SessionUser{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.ErrLog.LogServerError(w, r, "oauth: establish session", err, "could not complete sign-in")
		return
	}
	if err := h.Users.SetOnline(ctx, user.ID, true); err != nil {
		h.Log.Warn("oauth: mark online failed", zap.Error(err))
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"email":    user.Email,
	})
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser resolves the Google account to a local user, provisioning
// one on first sign-in with a username derived from the email local part.
func (h *Handler) findOrCreateUser(ctx context.Context, g *googleUserInfo) (*models.User, error) {
	user, err := h.Users.GetByEmail(ctx, g.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	base := strings.SplitN(g.Email, "@", 2)[0]
	for attempt := 0; attempt < 5; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s%d", base, attempt)
		}
		created, err := h.Users.Create(ctx, models.User{
			Username:       username,
			Email:          g.Email,
			AuthMethod:     "google",
			ProfilePicture: g.Picture,
		})
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, fmt.Errorf("could not find a free username for %s", g.Email)
}
