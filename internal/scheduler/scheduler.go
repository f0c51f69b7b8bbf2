// Package scheduler runs the periodic pipeline jobs on gocron.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

// Job is one periodic task. A run never overlaps the previous run of the same job.
type Job struct {
	Name  string
	Every time.Duration
	// Timeout bounds a single run. Zero means the scheduler wide cap.
	Timeout time.Duration
	// Alert sends run failures to the telegram operator.
	Alert bool
	Run   func(ctx context.Context) error
}

type Scheduler struct {
	cron       gocron.Scheduler
	jobs       []Job
	startup    []Job
	timeoutCap time.Duration
	alerts     telegram.Client
	logger     logger.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

const defaultTimeoutCap = 30 * time.Minute

func newScheduler(jobs, startup []Job, loc *time.Location, timeoutCap time.Duration, alerts telegram.Client, log logger.Logger) (*Scheduler, error) {
	if timeoutCap <= 0 {
		timeoutCap = defaultTimeoutCap
	}

	cron, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithGlobalJobOptions(gocron.WithSingletonMode(gocron.LimitModeReschedule)),
		gocron.WithStopTimeout(timeoutCap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron,
		jobs:       jobs,
		startup:    startup,
		timeoutCap: timeoutCap,
		alerts:     alerts,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}, nil
}

// Start registers every job, starts the timers and runs the startup jobs
// once, in order, in the background.
func (s *Scheduler) Start() error {
	for _, job := range s.jobs {
		if job.Every <= 0 {
			s.logger.Warn("Job disabled, no interval", "job", job.Name)
			continue
		}

		_, err := s.cron.NewJob(
			gocron.DurationJob(job.Every),
			gocron.NewTask(func() { s.run(job) }),
			gocron.WithName(job.Name),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.logger.Info("Job scheduled", "job", job.Name, "every", job.Every.String())
	}

	s.cron.Start()
	s.started = true

	go func() {
		defer close(s.done)
		for _, job := range s.startup {
			if s.ctx.Err() != nil {
				return
			}
			s.run(job)
		}
	}()

	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	err := s.cron.Shutdown()
	if s.started {
		<-s.done
	}
	if err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) run(job Job) {
	if s.ctx.Err() != nil {
		return
	}

	timeout := job.Timeout
	if timeout <= 0 || timeout > s.timeoutCap {
		timeout = s.timeoutCap
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	started := time.Now()
	outcome := "success"
	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			s.logger.Error("Job panicked", "job", job.Name, "panic", r, "stack", string(debug.Stack()))
			s.alert(job, fmt.Errorf("panic: %v", r))
		}
		metrics.JobRuns.WithLabelValues(job.Name, outcome).Inc()
	}()

	if err := job.Run(ctx); err != nil {
		outcome = "failure"
		if ctx.Err() == context.DeadlineExceeded {
			outcome = "timeout"
		}
		s.logger.Error("Job failed", "job", job.Name, "error", err, "elapsed", time.Since(started).String())
		s.alert(job, err)
		return
	}
	s.logger.Debug("Job finished", "job", job.Name, "elapsed", time.Since(started).String())
}

func (s *Scheduler) alert(job Job, err error) {
	if !job.Alert || s.alerts == nil || s.ctx.Err() != nil {
		return
	}
	s.alerts.SendMessageToUser(fmt.Sprintf("❌ %s failed: %v", job.Name, err))
}
