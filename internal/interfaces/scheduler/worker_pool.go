package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"financeiro/internal/shared/logger"
)

var (
	jobTracer          = otel.Tracer("financeiro/scheduler")
	jobMeter           = otel.Meter("financeiro/scheduler")
	jobDuration, _     = jobMeter.Float64Histogram("scheduler.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("scheduler.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("scheduler.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

var (
	ErrQueueFull  = errors.New("job queue full")
	ErrPoolClosed = errors.New("worker pool is shut down")
)

// WorkerPool runs submitted jobs on a fixed number of goroutines
type WorkerPool struct {
	workerCount int
	jobTimeout  time.Duration
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	log         zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool. jobTimeout bounds each job run; zero means
// the job only stops when the pool is cancelled.
func NewWorkerPool(workerCount, queueSize int, jobTimeout time.Duration) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: max(workerCount, 1),
		jobTimeout:  jobTimeout,
		jobs:        make(chan Job, max(queueSize, 0)),
		ctx:         ctx,
		cancel:      cancel,
		log:         logger.WithComponent("worker_pool"),
	}
}

// Start launches the worker goroutines
func (wp *WorkerPool) Start() {
	wp.log.Info().Int("workers", wp.workerCount).Msg("starting worker pool")
	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

// processJob executes a single job with a timeout, a span and metrics.
// A panicking job is logged and counted as an error.
func (wp *WorkerPool) processJob(workerID int, job Job) {
	ctx := wp.ctx
	if wp.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wp.jobTimeout)
		defer cancel()
	}

	ctx, span := jobTracer.Start(ctx, "job."+job.Name(),
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.name", job.Name()),
		),
	)
	defer span.End()

	log := wp.log.With().Int("worker", workerID).Str("job", job.Name()).Logger()
	start := time.Now()

	err := runJob(ctx, job)
	elapsed := time.Since(start)
	attrs := metric.WithAttributes(attribute.String("job", job.Name()), attribute.String("status", statusLabel(err)))
	jobTotal.Add(ctx, 1, attrs)
	jobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("job", job.Name())))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Dur("duration", elapsed).Msg("job failed")
		return
	}
	log.Info().Dur("duration", elapsed).Msg("job completed")
}

func runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return job.Execute(ctx)
}

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("job panicked: %v", p.value) }

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Submit queues a job without blocking. A full queue drops the job and
// returns ErrQueueFull.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("job", job.Name())))
		wp.log.Warn().Str("job", job.Name()).Msg("job queue full, dropping job")
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. When
// timeout elapses first, running jobs are cancelled through their context.
// It reports whether every worker finished in time.
func (wp *WorkerPool) Shutdown(timeout time.Duration) bool {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return true
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	defer wp.cancel()
	select {
	case <-done:
		wp.log.Info().Msg("worker pool stopped")
		return true
	case <-time.After(timeout):
		wp.log.Warn().Dur("timeout", timeout).Msg("worker pool shutdown timed out, cancelling jobs")
		return false
	}
}
