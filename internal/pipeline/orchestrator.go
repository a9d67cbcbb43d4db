package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/stats"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("orchestrator is stopped")
)

// Orchestrator manages the analysis job pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	worker  WorkerConfig
	stats   *stats.RunStats
	metrics *Metrics
	log     *slog.Logger
	cfg     config.Config

	mu      sync.Mutex // guards stopped and sends on queue
	stopped bool

	cancel  context.CancelFunc
	workers sync.WaitGroup
	cleanup sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, worker WorkerConfig, runStats *stats.RunStats, metrics *Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		worker:  worker,
		stats:   runStats,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines. ctx is the parent of every run's
// context; Stop cancels it only after the queue has drained.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o.worker, o.stats, o.metrics, o.log)
			for job := range o.queue {
				o.observeQueue()
				w.Process(workerCtx, job)
			}
		}()
	}

	// Start job store cleanup.
	o.cleanup.Add(1)
	go func() {
		defer o.cleanup.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop refuses new jobs, waits for the workers to finish every queued job,
// then stops the cleanup loop. It is safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	o.workers.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.cleanup.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.Fail("stopped", ErrStopped)
		return ErrStopped
	}
	select {
	case o.queue <- job:
		o.observeQueue()
		return nil
	default:
		job.Fail("queue_full", ErrQueueFull)
		if o.metrics != nil {
			o.metrics.JobsRejected.Inc()
		}
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the run statistics window.
func (o *Orchestrator) Stats() *stats.RunStats {
	return o.stats
}

func (o *Orchestrator) observeQueue() {
	if o.metrics != nil {
		o.metrics.QueueDepth.Set(float64(len(o.queue)))
	}
}
