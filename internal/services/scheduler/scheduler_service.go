package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
)

// ErrJobBusy is returned when a job is triggered while another run is in progress
var ErrJobBusy = errors.New("a job is already running")

// stopTimeout bounds how long Stop waits for a running job
const stopTimeout = 60 * time.Second

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     func() error
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
	runs        int
	skipped     int
}

// Service implements SchedulerService on top of robfig/cron
type Service struct {
	cron     *cron.Cron
	logger   arbor.ILogger
	mu       sync.Mutex // Protects running
	jobMu    sync.Mutex // Protects jobs map
	globalMu sync.Mutex // Prevents concurrent job execution
	jobs     map[string]*jobEntry
	running  bool
}

// Compile-time assertion
var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a new scheduler service.
// Ticks that arrive while the previous run of the same job is still going are skipped.
func NewService(logger arbor.ILogger) *Service {
	cronLog := &cronLogger{logger: logger}
	return &Service{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// Start begins firing registered jobs on their schedules
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", s.jobCount()).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(stopTimeout):
		s.logger.Warn().Msg("Timed out waiting for running job to finish")
		return fmt.Errorf("scheduler stop timed out after %s", stopTimeout)
	}

	// A manually triggered run is not tracked by cron
	s.globalMu.Lock()
	s.globalMu.Unlock()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RegisterJob registers a new job with the scheduler
func (s *Service) RegisterJob(name string, schedule string, description string, handler func() error) error {
	if handler == nil {
		return fmt.Errorf("job %s has no handler", name)
	}
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		_ = s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// TriggerJob runs a job immediately on the calling goroutine and returns its error
func (s *Service) TriggerJob(name string) error {
	s.jobMu.Lock()
	_, exists := s.jobs[name]
	s.jobMu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.logger.Debug().
		Str("job_name", name).
		Msg("Manually triggering job execution")

	return s.executeJob(name)
}

// GetJobStatus returns the status of a specific job
func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}

	var nextRun *time.Time
	if next := s.cron.Entry(entry.cronID).Next; !next.IsZero() {
		nextRun = &next
	}

	return &interfaces.JobStatus{
		Name:        entry.name,
		Enabled:     true,
		Schedule:    entry.schedule,
		Description: entry.description,
		LastRun:     entry.lastRun,
		NextRun:     nextRun,
		IsRunning:   entry.isRunning,
		LastError:   entry.lastError,
		Runs:        entry.runs,
		Skipped:     entry.skipped,
	}, nil
}

// executeJob wraps job execution with the global lock, panic recovery and status tracking.
// A run that finds another job in progress is skipped rather than queued.
func (s *Service) executeJob(name string) (err error) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job_name", name).Msg("Job not found")
		return fmt.Errorf("job %s not found", name)
	}
	s.jobMu.Unlock()

	if !s.globalMu.TryLock() {
		s.jobMu.Lock()
		entry.skipped++
		s.jobMu.Unlock()
		s.logger.Warn().
			Str("job_name", name).
			Msg("Previous run still in progress - skipping")
		return ErrJobBusy
	}
	defer s.globalMu.Unlock()

	s.jobMu.Lock()
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in job execution")
		}

		completed := time.Now()
		s.jobMu.Lock()
		entry.isRunning = false
		entry.lastRun = &completed
		entry.runs++
		if err != nil {
			entry.lastError = err.Error()
		} else {
			entry.lastError = ""
		}
		s.jobMu.Unlock()

		if err != nil {
			s.logger.Error().
				Str("job_name", name).
				Err(err).
				Str("duration", time.Since(start).String()).
				Msg("Job execution failed")
			return
		}
		s.logger.Debug().
			Str("job_name", name).
			Str("duration", time.Since(start).String()).
			Msg("Job execution completed")
	}()

	return handler()
}

func (s *Service) jobCount() int {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return len(s.jobs)
}

// cronLogger adapts arbor to cron.Logger
type cronLogger struct {
	logger arbor.ILogger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.logger.Warn().Str("fields", fmt.Sprint(keysAndValues...)).Msg("Scheduler tick skipped - job still running")
		return
	}
	l.logger.Trace().Str("fields", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Str("fields", fmt.Sprint(keysAndValues...)).Msg("cron: " + msg)
}

// Ensure the adapter satisfies cron.Logger
var _ cron.Logger = (*cronLogger)(nil)

// WaitIdle blocks until no job is running or ctx ends
func (s *Service) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.globalMu.TryLock() {
			s.globalMu.Unlock()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
