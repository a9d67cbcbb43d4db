package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/lexicon"
	"github.com/dgallion1/docrank/internal/stats"
)

func newTestOrchestrator(workers, queue int) *Orchestrator {
	cfg := config.Config{WorkerCount: workers, MaxQueueSize: queue, JobTTL: time.Hour}
	wc := WorkerConfig{Normalizer: lexicon.NewNormalizer(lexicon.DefaultStopWords(), true)}
	return NewOrchestrator(cfg, wc, stats.NewRunStats(time.Hour), NewMetrics(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	o := newTestOrchestrator(2, 10)
	o.Start(context.Background())
	defer o.Stop()

	job := analystJob(File{Name: "report.md", Data: []byte(quarterlyReport)})
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be retrievable")
	}

	snap := waitDone(t, job)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if got := o.Stats().Snapshot().Runs; got != 1 {
		t.Errorf("expected 1 run in stats, got %d", got)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	o := newTestOrchestrator(1, 1)
	defer o.Stop()

	first := analystJob(File{Name: "a.md", Data: []byte(quarterlyReport)})
	if err := o.Submit(first); err != nil {
		t.Fatalf("unexpected error for first job: %v", err)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	second := analystJob(File{Name: "b.md", Data: []byte(staffNotes)})
	err := o.Submit(second)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected rejected job to be failed with queue_full, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_GetJobMissing(t *testing.T) {
	o := newTestOrchestrator(1, 1)
	defer o.Stop()
	if o.GetJob("nope") != nil {
		t.Error("expected nil for unknown job")
	}
}

func TestOrchestrator_StopDrainsQueuedJobs(t *testing.T) {
	o := newTestOrchestrator(1, 10)
	var jobs []*Job
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md"} {
		job := analystJob(File{Name: name, Data: []byte(quarterlyReport)})
		if err := o.Submit(job); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
		jobs = append(jobs, job)
	}

	// Jobs are queued before any worker runs, so Stop must process all of them.
	o.Start(context.Background())
	o.Stop()

	for _, job := range jobs {
		snap := job.Snapshot()
		if snap.Status != StatusCompleted {
			t.Errorf("job %s: expected completed after Stop, got %q (errors %v)", job.ID, snap.Status, snap.Progress.Errors)
		}
	}
	if got := o.Stats().Snapshot().Runs; got != len(jobs) {
		t.Errorf("expected %d runs in stats, got %d", len(jobs), got)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := newTestOrchestrator(1, 10)
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := analystJob(File{Name: "late.md", Data: []byte(quarterlyReport)})
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected failed status, got %q", snap.Status)
	}
}
