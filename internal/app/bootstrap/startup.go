// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	tournamentstore "github.com/nabs-75/SkillArena/internal/app/store/tournaments"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/nabs-75/SkillArena/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// sweeper is started here and stopped in Shutdown.
var sweeper *workers.Sweeper

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. SkillArena
// uses it to start the background maintenance sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	tournaments := tournamentstore.New(deps.MongoDatabase, users)

	var err error
	sweeper, err = workers.NewSweeper(tournaments, users, logger,
		appCfg.SweepInterval, appCfg.TournamentRuntime, appCfg.PresenceThreshold)
	if err != nil {
		return err
	}
	return sweeper.Start()
}
