// Package scheduler runs periodic scoring-model retraining on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultJobTimeout bounds a single retraining run.
const DefaultJobTimeout = 5 * time.Minute

// Trainer is the job target; usecase.ScoringModel satisfies it.
type Trainer interface {
	Train(ctx context.Context) error
}

// RetrainScheduler refits the scoring model whenever the schedule fires.
// Overlapping runs are skipped.
type RetrainScheduler struct {
	cron    *cron.Cron
	trainer Trainer
	logger  zerolog.Logger
	timeout time.Duration
	entry   cron.EntryID
}

// New parses spec (standard five-field cron or a descriptor such as
// "@every 1h") and registers the retraining job.
func New(spec string, trainer Trainer, logger zerolog.Logger) (*RetrainScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}

	logger = logger.With().Str("component", "retrain_scheduler").Logger()
	cl := cronLogger{logger: logger}

	s := &RetrainScheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		trainer: trainer,
		logger:  logger,
		timeout: DefaultJobTimeout,
	}

	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("register retrain job: %w", err)
	}
	s.entry = id

	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *RetrainScheduler) Start() {
	s.cron.Start()
	s.logger.Info().Time("next_run", s.Next()).Msg("retrain scheduler started")
}

// Stop prevents new runs and waits for a running job or ctx, whichever ends first.
func (s *RetrainScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the job fires next; zero before Start.
func (s *RetrainScheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *RetrainScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.trainer.Train(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled retraining failed")
		return
	}

	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("scheduled retraining finished")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
