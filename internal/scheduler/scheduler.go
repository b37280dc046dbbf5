package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

const refreshTimeout = 10 * time.Second

// CounterRefresher recomputes the agency counter snapshot.
type CounterRefresher interface {
	Refresh(ctx context.Context) (*models.CounterSnapshot, error)
}

// Scheduler runs periodic background jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// ScheduleCounterRefresh registers the counter refresh job under spec,
// e.g. "@every 30s".
func (s *Scheduler) ScheduleCounterRefresh(ctx context.Context, spec string, refresher CounterRefresher) error {
	if _, err := s.cron.AddFunc(spec, refreshJob(ctx, refresher, s.logger)); err != nil {
		return fmt.Errorf("scheduler: invalid counter refresh spec %q: %w", spec, err)
	}
	return nil
}

// Start launches the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler...")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped.")
}

func refreshJob(ctx context.Context, refresher CounterRefresher, logger *logrus.Logger) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		jobCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		snapshot, err := refresher.Refresh(jobCtx)
		if err != nil {
			logger.WithError(err).Error("Failed to refresh agency counters")
			return
		}
		logger.WithFields(logrus.Fields{
			"version":  snapshot.Version,
			"agencies": len(snapshot.Counters),
		}).Debug("Agency counters refreshed")
	}
}
