package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/myze/momentum/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     int32
	failures int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.runs, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobDuplicate(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "refresh", schedule: "@every 1h"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.AddJob(job); err == nil {
		t.Error("Expected error for duplicate job, got nil")
	}
}

func TestAddJobBadSchedule(t *testing.T) {
	s := newTestScheduler()

	if err := s.AddJob(&countingJob{name: "bad", schedule: "not-a-schedule"}); err == nil {
		t.Error("Expected error for invalid schedule, got nil")
	}
}

func TestRunJobImmediate(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "refresh", schedule: "@every 1h"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}

	if err := s.RunJob("refresh"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}

	waitFor(t, func() bool {
		result, ok := s.LastResult("refresh")
		return ok && result.Success
	})

	if got := atomic.LoadInt32(&job.runs); got != 1 {
		t.Errorf("Expected 1 run, got %d", got)
	}
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler()

	if err := s.RunJob("missing"); err == nil {
		t.Error("Expected error for unknown job, got nil")
	}
}

func TestRunJobRetries(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", schedule: "@every 1h", failures: 2}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() failed: %v", err)
	}
	if err := s.RunJob("flaky"); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}

	waitFor(t, func() bool {
		result, ok := s.LastResult("flaky")
		return ok && result.Success
	})

	// Two failures, then success on the third attempt
	if got := atomic.LoadInt32(&job.runs); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
