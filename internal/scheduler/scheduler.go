// Package scheduler drives the periodic due-task scan.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs one job on a fixed tick. A tick that is still running when
// the next one fires causes the next one to be skipped, not queued.
type Scheduler struct {
	cron *cron.Cron
}

func New(interval time.Duration, job func(context.Context)) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DefaultLogger),
	))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		job(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("add tick job: %w", err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler: started")
}

// Stop halts scheduling and returns once any in-flight tick has finished.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Printf("scheduler: stopped")
}
