package dbx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Busy-retry defaults for SQLite writers.
const (
	busyRetryBase     = 10 * time.Millisecond
	busyRetryAttempts = 5
)

// IsBusy reports whether err is SQLITE_BUSY or SQLITE_LOCKED (including
// their extended codes), i.e. another connection holds the write lock.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// WithTxRetry runs WithTx and retries the whole transaction with exponential
// backoff while it fails with a busy/locked error. Any other error, or
// context cancellation, stops immediately.
func WithTxRetry(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	b := retry.WithMaxRetries(busyRetryAttempts, retry.NewExponential(busyRetryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := WithTx(ctx, db, opts, fn)
		if err != nil && IsBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
