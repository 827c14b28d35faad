// Package scheduler runs the catalog's periodic jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/locallibrary/internal/database/instances"
)

// OverdueSweep periodically reports how many on-loan copies are past their
// due-back date. Read-only: it never mutates loan state.
type OverdueSweep struct {
	instances *instances.Repository
	schedule  string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewOverdueSweep creates a new sweep with a standard five-field cron schedule.
func NewOverdueSweep(instancesRepo *instances.Repository, schedule string) *OverdueSweep {
	return &OverdueSweep{
		instances: instancesRepo,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduled sweep.
func (s *OverdueSweep) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue sweep: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *OverdueSweep) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Overdue sweep: stopped")
}

// runSweep counts overdue copies and logs the result.
func (s *OverdueSweep) runSweep() {
	count, err := s.instances.CountOverdue(time.Now())
	if err != nil {
		log.Printf("Overdue sweep: failed to count overdue loans: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Overdue sweep: %d copies are overdue", count)
	}
}
