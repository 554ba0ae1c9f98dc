package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"financeiro/internal/shared/logger"
)

// Entry binds a job to a standard five-field cron spec
type Entry struct {
	Spec string
	Job  Job
}

type Config struct {
	Entries      []Entry
	Location     *time.Location
	WorkerCount  int
	QueueSize    int
	JobTimeout   time.Duration
	RunOnStartup bool
}

// Scheduler fires jobs on their cron specs and hands them to a worker
// pool, so a slow job never delays the cron loop.
type Scheduler struct {
	cron         *cron.Cron
	pool         *WorkerPool
	jobs         []Job
	runOnStartup bool
	log          zerolog.Logger
}

// New validates every spec up front. Entries with an empty spec are skipped.
func New(cfg Config) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	s := &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		pool:         NewWorkerPool(cfg.WorkerCount, cfg.QueueSize, cfg.JobTimeout),
		runOnStartup: cfg.RunOnStartup,
		log:          logger.WithComponent("scheduler"),
	}

	for _, e := range cfg.Entries {
		if e.Spec == "" {
			s.log.Info().Str("job", e.Job.Name()).Msg("job disabled")
			continue
		}
		job := e.Job
		if _, err := s.cron.AddFunc(e.Spec, func() { s.submit(job) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for job %s: %w", e.Spec, job.Name(), err)
		}
		s.jobs = append(s.jobs, job)
		s.log.Info().Str("job", job.Name()).Str("spec", e.Spec).Msg("job scheduled")
	}

	return s, nil
}

// Jobs returns the scheduled jobs in registration order
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Start launches the workers and the cron loop. With RunOnStartup every
// scheduled job is queued once immediately.
func (s *Scheduler) Start() {
	s.pool.Start()
	if s.runOnStartup {
		for _, job := range s.jobs {
			s.submit(job)
		}
	}
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Shutdown stops firing new runs, then drains the worker pool
func (s *Scheduler) Shutdown(timeout time.Duration) {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.pool.Shutdown(timeout)
}

func (s *Scheduler) submit(job Job) {
	if err := s.pool.Submit(job); err != nil {
		s.log.Warn().Err(err).Str("job", job.Name()).Msg("job not queued")
	}
}
