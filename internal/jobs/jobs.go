// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Func is a unit of scheduled work.
type Func func(ctx context.Context) error

// Scheduler wraps a robfig/cron instance. Jobs that panic are recovered
// and logged.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]cron.Job
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cl := cronLogger{logger: logger}
	wrappers := []cron.JobWrapper{cron.Recover(cl), cron.SkipIfStillRunning(cl)}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(wrappers...)),
		chain:  cron.NewChain(wrappers...),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.Job),
	}
}

// Register schedules fn under name. spec accepts the standard five-field
// syntax and descriptors such as "@every 10m" or "@hourly".
func (s *Scheduler) Register(name, spec string, fn Func) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}

	job := cron.FuncJob(func() { s.run(name, fn) })
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.jobs[name] = job

	s.logger.Info("job registered", "job", name, "schedule", spec)
	return nil
}

// RunNow runs a registered job immediately on the calling goroutine.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	s.chain.Then(job).Run()
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started", "jobs", s.Len())
}

// Stop cancels running jobs' context and waits for them up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("job scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for jobs: %w", ctx.Err())
	}
}

func (s *Scheduler) run(name string, fn Func) {
	start := time.Now()
	err := fn(s.ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", duration, "error", err)
		return
	}
	s.logger.Debug("job finished", "job", name, "duration", duration)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
