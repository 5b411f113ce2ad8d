package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a ledger transaction may hit while contending for the vault row.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier re-runs a whole ledger transaction when Postgres aborts it for
// contention. Business errors are never retried.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a Retrier allowing three retries.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		logger:          logger.With().Str("component", "retrier").Logger(),
	}
}

// Retry runs operation until it succeeds, fails permanently or retries run out.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initialInterval
	exp.MaxInterval = r.maxInterval
	exp.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, r.maxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil || isRetryableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("ledger transaction aborted by contention, retrying")
	})
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	// Connection failures before any bytes reached the server.
	return pgconn.SafeToRetry(err)
}
