// Package scheduler runs maintenance jobs on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one run of a scheduled task.
type Job func(ctx context.Context) error

// Config holds configuration for a scheduler.
type Config struct {
	// Name identifies the job in logs and status output.
	Name string

	// Interval is how often the job runs.
	Interval time.Duration

	// StartImmediately runs the job once as soon as the scheduler starts.
	StartImmediately bool

	// OnComplete is called after each run, successful or not.
	OnComplete func(err error)
}

// Scheduler runs a Job every Interval until stopped. Runs never overlap.
type Scheduler struct {
	job    Job
	config Config
	logger *zap.Logger

	mu           sync.RWMutex
	runMu        sync.Mutex
	running      bool
	runCtx       context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	triggered    sync.WaitGroup
	startedAt    time.Time
	lastRun      time.Time
	lastError    error
	runCount     int
	failureCount int
}

// New creates a scheduler for job.
func New(job Job, config Config, logger *zap.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("job cannot be nil")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", config.Interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{job: job, config: config, logger: logger.With(zap.String("job", config.Name))}, nil
}

// Start starts the scheduler. The job receives a context derived from ctx
// that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler %s is already running", s.config.Name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx = runCtx
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.startedAt = time.Now()

	go s.loop(runCtx, s.done)

	s.logger.Info("scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop stops the scheduler, cancels the job context and waits for scheduled
// and triggered runs in progress to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler %s is not running", s.config.Name)
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.triggered.Wait()

	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.StartImmediately {
		s.run(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.run(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// run executes the job once and records the outcome.
func (s *Scheduler) run(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := s.job(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.runCount++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", zap.Error(err))
	} else {
		s.logger.Debug("scheduled job finished", zap.Duration("took", time.Since(start)))
	}

	if s.config.OnComplete != nil {
		s.config.OnComplete(err)
	}
}

// Trigger runs the job now in the background without affecting the
// schedule. The run uses the scheduler's context, so Stop cancels and waits
// for it.
func (s *Scheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler %s is not running", s.config.Name)
	}

	ctx := s.runCtx
	s.triggered.Add(1)
	go func() {
		defer s.triggered.Done()
		s.run(ctx)
	}()
	return nil
}

// Name returns the job name.
func (s *Scheduler) Name() string {
	return s.config.Name
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Status returns the current scheduler status.
func (s *Scheduler) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nextRun time.Time
	if s.running {
		base := s.lastRun
		if base.IsZero() {
			base = s.startedAt
		}
		nextRun = base.Add(s.config.Interval)
	}

	return &Status{
		Name:         s.config.Name,
		Running:      s.running,
		Interval:     s.config.Interval,
		LastRun:      s.lastRun,
		NextRun:      nextRun,
		RunCount:     s.runCount,
		FailureCount: s.failureCount,
		LastError:    s.lastError,
	}
}

// Status contains information about the scheduler state.
type Status struct {
	Name         string
	Running      bool
	Interval     time.Duration
	LastRun      time.Time
	NextRun      time.Time
	RunCount     int
	FailureCount int
	LastError    error
}

// String returns a human-readable representation of the status.
func (s *Status) String() string {
	if !s.Running {
		return fmt.Sprintf("%s: stopped", s.Name)
	}

	status := fmt.Sprintf("%s: running\n", s.Name)
	status += fmt.Sprintf("  Interval: %s\n", s.Interval)
	status += fmt.Sprintf("  Runs: %d\n", s.RunCount)
	status += fmt.Sprintf("  Failures: %d\n", s.FailureCount)
	if !s.LastRun.IsZero() {
		status += fmt.Sprintf("  Last Run: %s\n", s.LastRun.Format(time.RFC3339))
	}
	if !s.NextRun.IsZero() {
		status += fmt.Sprintf("  Next Run: %s\n", s.NextRun.Format(time.RFC3339))
	}
	if s.LastError != nil {
		status += fmt.Sprintf("  Last Error: %v\n", s.LastError)
	}
	return status
}
