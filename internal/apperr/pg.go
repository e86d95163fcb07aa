package apperr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes outside class 08 that still mean the server went away.
var connectionStates = map[string]bool{
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
}

// Classify wraps a store error as ConnectionError or QueryError.
// nil and sql.ErrNoRows pass through untouched so callers can still test for them.
func Classify(op string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var (
		known *ConnectionError
		typed *QueryError
	)
	if errors.As(err, &known) || errors.As(err, &typed) {
		return err
	}
	if isConnectionErr(err) {
		return &ConnectionError{Op: op, Err: err}
	}
	qe := &QueryError{Op: op, Err: err}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		qe.SQLState = pg.Code
	}
	return qe
}

func isConnectionErr(err error) bool {
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return strings.HasPrefix(pg.Code, "08") || connectionStates[pg.Code]
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
