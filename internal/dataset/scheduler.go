package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs periodic jobs (dataset reloads, page-session sweeps) on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	started bool
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewScheduler registers jobs and returns a stopped scheduler.
func NewScheduler(ctx context.Context, logger *zap.Logger, jobs ...Job) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()
	for _, job := range jobs {
		job := job
		if job.Schedule == "" || job.Run == nil {
			continue
		}
		_, err := c.AddFunc(job.Schedule, func() {
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				logger.Warn("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
				return
			}
			logger.Debug("scheduled job completed", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
		})
		if err != nil {
			return nil, fmt.Errorf("dataset: schedule %s (%q): %w", job.Name, job.Schedule, err)
		}
	}
	return &Scheduler{
		cron:    c,
		logger:  logger,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// Start runs the scheduler until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	go func() {
		select {
		case <-ctx.Done():
		case <-s.quit:
		}
		<-s.cron.Stop().Done()
		s.logger.Debug("scheduler stopped")
		close(s.stopped)
	}()
}

// Stop halts the scheduler and blocks until in-flight jobs return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
}

// Entries reports the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// ReloadJob builds a job that refreshes store from its source.
func ReloadJob(store *Store, schedule string, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name:     "dataset-reload",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			n, err := store.Reload(ctx)
			if err != nil {
				return err
			}
			logger.Info("dataset reloaded", zap.Int("records", n))
			return nil
		},
	}
}
