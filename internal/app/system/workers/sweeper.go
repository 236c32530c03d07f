// internal/app/system/workers/sweeper.go
package workers

import (
	"context"
	"time"

	tournamentstore "github.com/nabs-75/SkillArena/internal/app/store/tournaments"
	userstore "github.com/nabs-75/SkillArena/internal/app/store/users"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Sweeper runs the periodic maintenance jobs: advancing tournament lifecycle
// states past their start dates and flipping users offline once their
// heartbeats go stale.
type Sweeper struct {
	tournaments *tournamentstore.Store
	users       *userstore.Store
	log         *zap.Logger

	interval          time.Duration
	tournamentRuntime time.Duration
	presenceThreshold time.Duration

	sched gocron.Scheduler
}

// NewSweeper creates the maintenance worker.
//
// Parameters:
//   - interval: how often both sweeps run (e.g., 1 minute)
//   - tournamentRuntime: how long past its start date a tournament counts as
//     ongoing before it is completed
//   - presenceThreshold: how stale a heartbeat may be before the user is
//     shown offline
func NewSweeper(tournaments *tournamentstore.Store, users *userstore.Store, logger *zap.Logger,
	interval, tournamentRuntime, presenceThreshold time.Duration) (*Sweeper, error) {

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		tournaments:       tournaments,
		users:             users,
		log:               logger,
		interval:          interval,
		tournamentRuntime: tournamentRuntime,
		presenceThreshold: presenceThreshold,
		sched:             sched,
	}, nil
}

// Start schedules both sweeps and begins running them.
func (w *Sweeper) Start() error {
	if _, err := w.sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.sweepTournaments),
	); err != nil {
		return err
	}
	if _, err := w.sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.sweepPresence),
	); err != nil {
		return err
	}

	w.sched.Start()
	w.log.Info("maintenance sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("tournament_runtime", w.tournamentRuntime),
		zap.Duration("presence_threshold", w.presenceThreshold))
	return nil
}

// Stop shuts the scheduler down and waits for running jobs to finish.
func (w *Sweeper) Stop() {
	if err := w.sched.Shutdown(); err != nil {
		w.log.Error("sweeper shutdown failed", zap.Error(err))
		return
	}
	w.log.Info("maintenance sweeper stopped")
}

// participationPoints is credited to every roster member when their
// tournament completes.
const participationPoints = 25

func (w *Sweeper) sweepTournaments() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, finishers, err := w.tournaments.AdvancePastDue(ctx, time.Now().UTC(), w.tournamentRuntime)
	if err != nil {
		w.log.Error("tournament status sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("advanced tournament statuses", zap.Int64("count", count))
	}

	for _, userID := range finishers {
		if err := w.users.AddPoints(ctx, userID, participationPoints); err != nil {
			w.log.Error("awarding participation points failed",
				zap.String("user_id", userID.Hex()), zap.Error(err))
		}
	}
}

func (w *Sweeper) sweepPresence() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.presenceThreshold)
	count, err := w.users.MarkStaleOffline(ctx, cutoff)
	if err != nil {
		w.log.Error("presence sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("marked stale users offline", zap.Int64("count", count))
	}
}
