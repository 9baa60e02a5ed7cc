// Package scheduler drives one periodic job per facet. Jobs tick on
// independent intervals and contain their own failures; a failing facet is
// simply retried on its next tick.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one facet's refresh cycle.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler owns the timer set for one client.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	timeout   time.Duration
	log       *slog.Logger
}

// New creates a scheduler for the given jobs. timeout bounds each tick's
// network work.
func New(jobs []Job, timeout time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      jobs,
		timeout:   timeout,
		log:       log,
	}
}

// Start registers every job and starts the underlying scheduler. Each job
// runs once immediately (first refresh) before entering its cadence;
// singleton mode guarantees a job is never re-entered before its previous
// tick completes.
func (s *Scheduler) Start() error {
	for _, job := range s.jobs {
		job := job
		_, err := s.scheduler.
			Every(job.Interval).
			Tag(job.Name).
			SingletonMode().
			StartImmediately().
			Do(func() {
				ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
				defer cancel()

				if err := job.Run(ctx); err != nil {
					s.log.Warn("facet refresh failed", "job", job.Name, "error", err)
					return
				}
				s.log.Debug("facet refresh done", "job", job.Name)
			})
		if err != nil {
			return err
		}
	}
	s.scheduler.StartAsync()
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.scheduler.Len()
}

// Stop stops all timers. In-flight ticks are abandoned, not drained.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
