// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshare/internal/logging"
)

// Job is one unit of maintenance work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceScheduler runs a fixed list of jobs on a cron schedule.
type MaintenanceScheduler struct {
	schedule string
	jobs     []Job

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a scheduler. Start must be called to run it.
func NewMaintenanceScheduler(schedule string, jobs ...Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		schedule: schedule,
		jobs:     jobs,
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start registers the jobs and begins the scheduler. It stops when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	logging.Info().
		Str("schedule", s.schedule).
		Str("description", DescribeSchedule(s.schedule)).
		Time("next_run", next).
		Int("jobs", len(s.jobs)).
		Msg("Maintenance scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running pass to finish and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	logging.Info().Msg("Maintenance scheduler stopped")
}

// RunNow runs every job once, in order. A failing job does not stop the rest.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) []error {
	var errs []error
	for _, job := range s.jobs {
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			logging.Error().Err(err).Str("job", job.Name).Msg("Maintenance job failed")
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
			continue
		}
		logging.Debug().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Maintenance job finished")
	}
	return errs
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next pass will occur, or nil when stopped.
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
