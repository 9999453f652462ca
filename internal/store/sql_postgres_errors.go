package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells [DB.withRetry] whether a failed record
// transaction is worth running again.
type ErrorClassification int

const (
	// NonRetryable is the default for every error not known to be transient.
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures: lost connections, serialization
	// rollbacks, lock timeouts and a restarting server.
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify unwraps err to a *pgconn.PgError and classifies its code. Errors
// that did not come from the server are [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return NonRetryable
	}
	return ClassifyPgError(pgErr)
}

// ClassifyPgError classifies by SQLSTATE class:
//
//   - 08 connection exception: retry
//   - 40 transaction rollback (serialization failure, deadlock): retry
//   - 55P03 lock not available: retry
//   - 57P01 / 57P03 admin shutdown, cannot connect now: retry
//
// Everything else, constraint violations included, is final. A unique or
// foreign key violation on records is mapped to a store sentinel by the
// repository itself.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	code := pgErr.Code

	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code):
		return Retryable
	case code == pgerrcode.LockNotAvailable,
		code == pgerrcode.AdminShutdown,
		code == pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}
