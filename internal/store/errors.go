package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == "23505"
}

// IsNoRows - signals that a query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsRetryable reports whether a read may be retried by the retrying
// decorator. Connection-level failures qualify; constraint and syntax
// errors never do.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsNoRows(err) || IsDuplicate(err) {
		return false
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		// class 08 - connection exceptions, 57 - operator intervention
		return len(pgerr.Code) >= 2 && (pgerr.Code[:2] == "08" || pgerr.Code[:2] == "57")
	}
	return pgconn.SafeToRetry(err)
}
