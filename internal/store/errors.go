package store

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when registration hits an existing
	// login.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when no user matches the lookup.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrRecordNotFound is returned when the targeted record does not exist
	// for the owner.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRecordForbidden is returned when a record exists but belongs to
	// another owner.
	ErrRecordForbidden = errors.New("record belongs to another owner")

	// ErrRecordAlreadyExists is returned when a create reuses an existing id.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrStaleRecord is returned when an update carries a lastEditTimestamp
	// that is not strictly newer than the stored one. The concrete error is a
	// [*StaleRecordError].
	ErrStaleRecord = errors.New("record update is stale")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot render a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning a single row fails.
	ErrScanningRow = errors.New("failed to scan record row")

	// ErrScanningRows is returned when scanning during multi-row iteration
	// fails.
	ErrScanningRows = errors.New("failed to scan record rows")
)

// StaleRecordError carries the stored record that made an update stale.
type StaleRecordError struct {
	Current models.Record
}

func (e *StaleRecordError) Error() string {
	return fmt.Sprintf("%s: stored lastEditTimestamp %d", ErrStaleRecord, e.Current.LastEdit)
}

func (e *StaleRecordError) Unwrap() error {
	return ErrStaleRecord
}
