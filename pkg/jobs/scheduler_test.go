package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	applog "github.com/mo-amir99/coursehub-server-go/pkg/logger"
)

type countingJob struct {
	name  string
	runs  atomic.Int64
	err   error
	panic bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Execute(context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler(applog.Discard())
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("nope")}
	panicking := &countingJob{name: "panicking", panic: true}
	s.AddJob(ok, 0)
	s.AddJob(failing, 0)
	s.AddJob(panicking, 0)

	if err := s.RunOnce(context.Background(), "ok"); err != nil || ok.runs.Load() != 1 {
		t.Fatalf("ok job: err=%v runs=%d", err, ok.runs.Load())
	}
	if err := s.RunOnce(context.Background(), "failing"); err == nil {
		t.Fatal("expected failing job error")
	}
	if err := s.RunOnce(context.Background(), "panicking"); err == nil {
		t.Fatal("expected panic to surface as an error")
	}
	if err := s.RunOnce(context.Background(), "missing"); err == nil {
		t.Fatal("expected unknown job error")
	}
}

func TestStartRunsOnInterval(t *testing.T) {
	s := NewScheduler(applog.Discard())
	job := &countingJob{name: "tick"}
	idle := &countingJob{name: "idle"}
	s.AddJob(job, 5*time.Millisecond)
	s.AddJob(idle, 0)

	s.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if job.runs.Load() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", job.runs.Load())
	}
	if idle.runs.Load() != 0 {
		t.Fatal("jobs without an interval must not be scheduled")
	}

	after := job.runs.Load()
	time.Sleep(20 * time.Millisecond)
	if job.runs.Load() != after {
		t.Fatal("job kept running after Stop")
	}
}
