/*
scheduler.go - Autogeneration scheduler

PURPOSE:
  Runs the autogeneration sweep on a cron schedule and on demand, and keeps
  the run log.

DESIGN:
  - robfig/cron with SkipIfStillRunning: a slow sweep never stacks up
  - RunNow and the cron job share a mutex, so an admin trigger waits for a
    scheduled sweep instead of racing it
  - Every sweep gets a uuid; one run log line per type is stored under it
  - Unexpected sweep errors go to Sentry; suppressed per-type failures are
    only logged and counted

CONFIGURATION:
  - Schedule: cron expression or descriptor (default: @daily)
  - Enabled:  Whether the cron job is registered (default: true)

USAGE:
  scheduler := NewAutogenerationScheduler(gen, store, "@daily", logger)
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - daterange/autogen.go: the sweep
  - handlers.go: TriggerAutogeneration endpoint
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/metrics"
	"github.com/warp/daterange-engine/observability"
	"go.uber.org/zap"
)

// sweepTimeout bounds one scheduled sweep.
const sweepTimeout = 10 * time.Minute

// AutogenerationScheduler runs the autogeneration sweep.
type AutogenerationScheduler struct {
	Generator *daterange.Generator
	Runs      daterange.RunStore
	Schedule  string
	Enabled   bool
	Logger    *zap.Logger

	cron    *cron.Cron
	mu      sync.Mutex // guards cron
	sweepMu sync.Mutex // one sweep at a time
}

// SweepRun is the outcome of one scheduled or manual sweep.
type SweepRun struct {
	ID     string
	Report daterange.SweepReport
	Runs   []daterange.AutogenerationRun
}

// NewAutogenerationScheduler creates a new scheduler. A nil logger disables
// logging.
func NewAutogenerationScheduler(gen *daterange.Generator, runs daterange.RunStore, schedule string, logger *zap.Logger) *AutogenerationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutogenerationScheduler{
		Generator: gen,
		Runs:      runs,
		Schedule:  schedule,
		Enabled:   true,
		Logger:    logger,
	}
}

// Start registers the sweep and starts the cron runner.
func (s *AutogenerationScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("autogeneration scheduler disabled, not starting")
		return nil
	}
	if s.cron != nil {
		return nil
	}

	cl := cronLogger{s.Logger.Sugar()}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))
	if _, err := c.AddFunc(s.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid autogeneration schedule %q: %w", s.Schedule, err)
	}
	c.Start()
	s.cron = c

	s.Logger.Info("autogeneration scheduler started",
		zap.String("schedule", s.Schedule),
		zap.Time("next_run", s.nextRun()))
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish.
func (s *AutogenerationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
		s.Logger.Info("autogeneration scheduler stopped")
	}
}

// NextRunTime returns when the next scheduled sweep will occur, or the zero
// time when the scheduler isn't running.
func (s *AutogenerationScheduler) NextRunTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun()
}

func (s *AutogenerationScheduler) nextRun() time.Time {
	if s.cron == nil {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *AutogenerationScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	// errors are logged and reported by RunNow
	_, _ = s.RunNow(ctx)
}

// RunNow runs a sweep immediately and stores its run log. The returned run
// is filled even when the sweep aborts.
func (s *AutogenerationScheduler) RunNow(ctx context.Context) (SweepRun, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	run := SweepRun{ID: uuid.NewString()}
	logger := s.Logger.With(zap.String("run_id", run.ID))

	started := time.Now()
	report, sweepErr := s.Generator.Autogenerate(ctx)
	run.Report = report
	run.Runs = daterange.RunsFromReport(run.ID, report)

	var failed []string
	for _, res := range report.Results {
		if res.Outcome == daterange.SweepFailed && daterange.IsSuppressible(res.Err) {
			failed = append(failed, res.TypeName)
		}
		if res.Outcome == daterange.SweepCreated {
			metrics.ObserveGenerated(res.TypeName, len(res.Ranges))
		}
	}
	metrics.ObserveSweep(time.Since(started), sweepErr, failed)

	var saveErr error
	if len(run.Runs) > 0 && s.Runs != nil {
		// the sweep context may be the reason the sweep failed
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.Runs.SaveAutogenerationRuns(saveCtx, run.Runs); err != nil {
			saveErr = fmt.Errorf("failed to save autogeneration runs: %w", err)
		}
	}

	err := errors.Join(sweepErr, saveErr)
	if err != nil {
		logger.Error("autogeneration sweep failed", zap.Error(err))
		observability.CaptureErr(err)
		return run, err
	}

	logger.Info("autogeneration sweep completed",
		zap.Int("created", report.Count(daterange.SweepCreated)),
		zap.Int("skipped", report.Count(daterange.SweepSkipped)),
		zap.Int("failed", report.Count(daterange.SweepFailed)),
		zap.Duration("took", time.Since(started)))
	return run, nil
}

// cronLogger routes cron's logs to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
