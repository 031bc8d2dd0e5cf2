// Package scheduler runs periodic background jobs on a robfig/cron runner.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of periodic work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron   *cron.Cron
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log zerolog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleInterval registers job to run every interval, rounded down to
// whole seconds.
func (s *Scheduler) ScheduleInterval(name string, interval time.Duration, job Job) (cron.EntryID, error) {
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		return 0, fmt.Errorf("schedule %s: interval must be at least 1s, got %s", name, interval)
	}
	spec := fmt.Sprintf("@every %ds", seconds)

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		job(s.ctx)
		s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return id, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs' context and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
