package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE codes that indicate a transient conflict worth retrying.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// RetryConfig bounds automatic retries of conflicting transactions.
type RetryConfig struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryConfig is used when the caller passes a zero config.
var DefaultRetryConfig = RetryConfig{MaxRetries: 3, Backoff: 50 * time.Millisecond}

// WithTx executes fn within a RepeatableRead transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// WithTxRetry runs WithTx and retries on serialization or deadlock failures
// with a fixed backoff. The last error is surfaced once the budget is spent.
func WithTxRetry(ctx context.Context, pool *pgxpool.Pool, cfg RetryConfig, fn func(pgx.Tx) error) error {
	if cfg.MaxRetries <= 0 {
		cfg = DefaultRetryConfig
	}

	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Backoff):
			}
		}
		err = WithTx(ctx, pool, fn)
		if err == nil || !IsTransientConflict(err) {
			return err
		}
	}
	return fmt.Errorf("platform/db: retries exhausted: %w", err)
}

// IsTransientConflict reports whether err is a retryable transaction conflict.
func IsTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
