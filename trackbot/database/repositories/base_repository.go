package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

// BaseRepository provides the pieces every repository shares: the bun
// handle, the connection fail-fast guard and the transaction helper.
// Every mutating operation runs inside a single transaction so a failure
// never leaves a partial row behind.
type BaseRepository struct {
	db             *bun.DB
	defaultTimeout time.Duration
}

func NewBaseRepository(db *bun.DB) BaseRepository {
	return BaseRepository{
		db:             db,
		defaultTimeout: config.DefaultQueryTimeout,
	}
}

// connGuard is the first check of every operation. A nil handle means the
// process never connected (or was torn down); no storage is touched.
func (br *BaseRepository) connGuard() bool {
	return br.db != nil
}

// connFail builds the uniform connection failure for any payload type.
func connFail[T any]() results.Result[T] {
	return results.Fail[T](results.CodeDBConnectionFailed, "Database is not connected", "nil database handle")
}

// WithTimeout creates a context with the default query timeout
func (br *BaseRepository) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, br.defaultTimeout)
}

// RunInTx executes fn inside one transaction with the default timeout.
func (br *BaseRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	timeoutCtx, cancel := br.WithTimeout(ctx)
	defer cancel()

	return br.db.RunInTx(timeoutCtx, nil, fn)
}

// isNoRows reports whether err is the driver's empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// rowsAffected extracts the affected-row count, treating driver errors as
// zero so the zero-rows defense still trips.
func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
