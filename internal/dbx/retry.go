package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/sethvargo/go-retry"
)

// ErrTxConflict tells WithRetryTx that the transaction lost a race against a
// concurrent writer and must be re-run from the start.
var ErrTxConflict = errors.New("transaction conflict")

const (
	maxTxRetries   = 5
	txRetryBackoff = 10 * time.Millisecond
)

// WithRetryTx runs fn through WithTx and re-runs the whole transaction when it
// fails with a serialization failure, a deadlock, or ErrTxConflict. fn must
// therefore redo all of its reads on every attempt. Once the retries are
// used up the conflict is reported wrapped in common.ErrConflict. Any other
// error is returned as is after the rollback.
func WithRetryTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	backoff := retry.WithMaxRetries(maxTxRetries, retry.NewExponential(txRetryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := WithTx(ctx, db, opts, fn)
		if isConflict(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if isConflict(err) {
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	}
	return err
}

func isConflict(err error) bool {
	return err != nil && (IsSerializationFailure(err) || errors.Is(err, ErrTxConflict))
}
