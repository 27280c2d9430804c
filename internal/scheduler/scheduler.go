// Package scheduler runs the daily refresh jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron runner with structured logging around each job.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.SugaredLogger
}

// New creates a stopped Scheduler.
func New(logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddDaily registers a job to run every day at the given local time.
func (s *Scheduler) AddDaily(hour, minute int, name string, job func()) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Infow("Scheduled job starting", "job", name)
		job()
		s.logger.Infow("Scheduled job finished", "job", name)
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.logger.Infow("Scheduled daily job", "job", name, "spec", spec)
	return nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and returns a context that is done once running
// jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
