package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/custodyledger/internal/domain"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// DefaultMaxRetries is the number of re-runs after the first attempt.
const DefaultMaxRetries = 3

// Retrier implements usecase.Retrier with exponential backoff. It re-runs
// operations that lost a version check, deadlocked or failed serialization.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      DefaultMaxRetries,
		initialInterval: 20 * time.Millisecond,
		maxInterval:     500 * time.Millisecond,
		maxElapsedTime:  10 * time.Second,
		logger:          logger.With().Str("component", "retrier").Logger(),
	}
}

// WithMaxRetries overrides the retry budget. Negative values are ignored.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	if n >= 0 {
		r.maxRetries = n
	}
	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
// When the budget is exhausted on a database-level failure, the returned
// error also matches domain.ErrConflict.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable ledger error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && isRetryableError(err) && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}

	return err
}

// isRetryableError reports whether err is a lost version check or a
// transient PostgreSQL failure.
func isRetryableError(err error) bool {
	if errors.Is(err, domain.ErrConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}
