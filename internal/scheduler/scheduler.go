// Package scheduler wires up the cron job that periodically runs the
// listing check.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/miguel-so/FE-ebay-api-cron/internal/monitor"
)

// hourlySpec fires at the top of every hour.
const hourlySpec = "0 * * * *"

// Scheduler wraps robfig/cron and manages the recurring check.
type Scheduler struct {
	cron       *cron.Cron
	workflow   *monitor.Workflow
	runOnStart bool
}

// New creates a Scheduler. When runOnStart is set, one check fires
// right after Start instead of waiting for the first top of the hour.
func New(workflow *monitor.Workflow, runOnStart bool) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cron.DefaultLogger)),
		workflow:   workflow,
		runOnStart: runOnStart,
	}
}

// Start registers the hourly job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(hourlySpec, func() {
		_ = s.workflow.RunCheck(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", hourlySpec)

	if s.runOnStart {
		log.Println("[scheduler] Running initial check now (non-blocking)")
		go func() { _ = s.workflow.RunCheck(ctx) }()
	}
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}
