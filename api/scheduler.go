/*
scheduler.go - Automated assignment completion scheduler

PURPOSE:
  Periodically completes active assignments whose end date has passed,
  so the engine's view of who is staffed today tracks reality without
  manual cleanup.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Delegates the sweep to AssignmentEngine.AutoCompleteAssignments
  - Uses the engine's version tokens, so a concurrent manual edit of
    an assignment wins over the sweep

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAutoCompleteScheduler(engine)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: AutoCompleteAssignments endpoint (manual sweep)
  - staffing/engine.go: AutoCompleteAssignments
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/staffing-engine/staffing"
)

// schedulerActor is recorded as the modifier on swept assignments.
const schedulerActor = "scheduler"

// AutoCompleteScheduler sweeps past-end assignments to Completed.
type AutoCompleteScheduler struct {
	Engine        *staffing.AssignmentEngine
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutoCompleteScheduler creates a new scheduler.
func NewAutoCompleteScheduler(engine *staffing.AssignmentEngine) *AutoCompleteScheduler {
	return &AutoCompleteScheduler{
		Engine:        engine,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (s *AutoCompleteScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Scheduler] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *AutoCompleteScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (s *AutoCompleteScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *AutoCompleteScheduler) sweep() {
	ctx := context.Background()

	log.Printf("[Scheduler] Sweeping past-end assignments at %v", time.Now())

	result, err := s.Engine.AutoCompleteAssignments(ctx, schedulerActor)
	if err != nil {
		log.Printf("[Scheduler] Error sweeping assignments: %v", err)
		return
	}

	for _, msg := range result.Errors {
		log.Printf("[Scheduler] Skipped assignment: %s", msg)
	}
	if result.CompletedCount > 0 || len(result.Errors) > 0 {
		log.Printf("[Scheduler] Completed: %d closed, %d skipped", result.CompletedCount, len(result.Errors))
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *AutoCompleteScheduler) RunNow() {
	s.sweep()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (s *AutoCompleteScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(s.CheckInterval)
}
