// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	authgooglefeature "github.com/nabs-75/SkillArena/internal/app/features/authgoogle"
	friendsfeature "github.com/nabs-75/SkillArena/internal/app/features/friends"
	healthfeature "github.com/nabs-75/SkillArena/internal/app/features/health"
	loginfeature "github.com/nabs-75/SkillArena/internal/app/features/login"
	logoutfeature "github.com/nabs-75/SkillArena/internal/app/features/logout"
	profilefeature "github.com/nabs-75/SkillArena/internal/app/features/profile"
	signupfeature "github.com/nabs-75/SkillArena/internal/app/features/signup"
	tournamentsfeature "github.com/nabs-75/SkillArena/internal/app/features/tournaments"
	friendstore "github.com/nabs-75/SkillArena/internal/app/store/friends"
	"github.com/nabs-75/SkillArena/internal/app/store/oauthstate"
	tournamentstore "github.com/nabs-75/SkillArena/internal/app/store/tournaments"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/auth"
	"github.com/nabs-75/SkillArena/internal/app/system/blob"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SkillArena builds the session manager,
// the stores, and mounts the JSON feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores
	users := userstore.New(deps.MongoDatabase)
	friends := friendstore.New(deps.MongoDatabase, users, logger)
	tournaments := tournamentstore.New(deps.MongoDatabase, users)
	states := oauthstate.New(deps.MongoDatabase)

	// Picture uploads stay disabled until a bucket is configured.
	var blobs *blob.Store
	if appCfg.AvatarS3Bucket != "" {
		blobs, err = blob.New(context.Background(), blob.Config{
			Region:  appCfg.AvatarS3Region,
			Bucket:  appCfg.AvatarS3Bucket,
			Prefix:  appCfg.AvatarS3Prefix,
			BaseURL: appCfg.AvatarBaseURL,
		})
		if err != nil {
			logger.Error("blob store init failed", zap.Error(err))
			return nil, err
		}
	} else {
		logger.Warn("avatar bucket not configured; picture uploads disabled")
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/auth/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/auth/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(users, states, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	if googleHandler.IsConfigured() {
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Everything below needs a signed-in user.
	profileHandler := profilefeature.NewHandler(users, blobs, logger)
	friendsHandler := friendsfeature.NewHandler(friends, users, logger)
	tournamentsHandler := tournamentsfeature.NewHandler(tournaments, logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Mount("/profile", profilefeature.Routes(profileHandler))
		r.Mount("/friends", friendsfeature.Routes(friendsHandler))
		r.Mount("/users", friendsfeature.SearchRoutes(friendsHandler))
		r.Mount("/tournaments", tournamentsfeature.Routes(tournamentsHandler))
	})

	return r, nil
}
