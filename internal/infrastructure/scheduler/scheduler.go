package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/assetvault/internal/usecase"
)

// Reconciler runs a ledger invariant check.
type Reconciler interface {
	Check(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// Scheduler runs periodic background jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration
}

// New creates a scheduler. Each job run is bounded by timeout.
// Overlapping runs of the same job are skipped.
func New(logger zerolog.Logger, timeout time.Duration) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// AddJob registers fn under name on the given cron spec.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, s.wrap(name, fn))
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return id, nil
}

// AddReconciliation schedules periodic invariant checks.
func (s *Scheduler) AddReconciliation(spec string, r Reconciler) (cron.EntryID, error) {
	return s.AddJob("reconciliation", spec, ReconciliationJob(r, s.logger))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) wrap(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		s.logger.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("job finished")
	}
}

// ReconciliationJob returns a job that runs r and logs inconsistencies.
func ReconciliationJob(r Reconciler, logger zerolog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		report, err := r.Check(ctx)
		if err != nil {
			return fmt.Errorf("reconciliation: %w", err)
		}
		if !report.Consistent {
			logger.Error().
				Str("total_value_usd", report.TotalValueUSD.String()).
				Int("assets", len(report.Assets)).
				Msg("ledger reconciliation found discrepancies")
			return nil
		}
		logger.Info().
			Str("total_value_usd", report.TotalValueUSD.String()).
			Int("assets", len(report.Assets)).
			Msg("ledger reconciled")
		return nil
	}
}

type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
