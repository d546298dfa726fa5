package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultJobTimeout = 5 * time.Minute

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals until its context ends.
type Scheduler struct {
	jobs    map[string]*scheduledJob
	mu      sync.RWMutex
	logger  *slog.Logger
	timeout time.Duration
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]*scheduledJob),
		logger:  logger,
		timeout: defaultJobTimeout,
	}
}

// AddJob registers a job. A non-positive interval leaves the job registered
// for RunOnce but never scheduled.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Name()] = &scheduledJob{job: job, interval: interval}
}

// Start launches every scheduled job. Jobs stop when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	started := 0
	for _, scheduled := range s.jobs {
		if scheduled.interval <= 0 {
			continue
		}
		started++
		s.wg.Add(1)
		go s.runJob(ctx, scheduled)
	}
	s.mu.Unlock()

	s.logger.Info("job scheduler started", slog.Int("jobs", started))
}

func (s *Scheduler) runJob(ctx context.Context, scheduled *scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(scheduled.interval)
	defer ticker.Stop()

	s.logger.Info("starting job",
		slog.String("name", scheduled.job.Name()),
		slog.Duration("interval", scheduled.interval),
	)

	for {
		select {
		case <-ticker.C:
			s.execute(ctx, scheduled.job)
		case <-ctx.Done():
			return
		}
	}
}

// execute runs one job under a timeout; a panic is logged, never propagated.
func (s *Scheduler) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", slog.String("name", job.Name()), slog.Any("panic", r))
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err = job.Execute(ctx); err != nil {
		s.logger.Error("job execution failed",
			slog.String("name", job.Name()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return err
	}

	s.logger.Debug("job completed", slog.String("name", job.Name()), slog.Duration("duration", time.Since(start)))
	return nil
}

// Stop cancels running jobs and waits for in-flight executions to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a registered job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.RLock()
	scheduled, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", name)
	}

	return s.execute(ctx, scheduled.job)
}
