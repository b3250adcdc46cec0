package refresh

import (
	"context"
	"fmt"
	"time"
)

// Job adapts the refresher to the scheduler's Job interface.
type Job struct {
	refresher *Refresher
	interval  time.Duration
}

// NewJob creates the recurring snapshot refresh job.
func NewJob(r *Refresher, interval time.Duration) *Job {
	return &Job{refresher: r, interval: interval}
}

// Name returns the job name.
func (j *Job) Name() string { return "snapshot-refresh" }

// Schedule returns the cron expression for the refresh cadence.
func (j *Job) Schedule() string { return fmt.Sprintf("@every %s", j.interval) }

// Run executes one refresh cycle.
func (j *Job) Run(ctx context.Context) error {
	return j.refresher.Refresh(ctx)
}
