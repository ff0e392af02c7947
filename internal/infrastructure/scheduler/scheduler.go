// Package scheduler runs the clinic's periodic billing jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one named periodic task.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler wraps a cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler
func New() *Scheduler {
	log := logger.WithComponent("scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Add registers a job. Jobs with an empty spec are disabled.
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		s.log.Info().Str("job", job.Name).Msg("job disabled")
		return nil
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	_, err := s.cron.AddFunc(job.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
	}
	s.log.Info().Str("job", job.Name).Str("spec", job.Spec).Msg("job scheduled")
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before running jobs finished")
	}
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
