package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by storage implementations to signal well-known
// failure conditions. Callers should use [errors.Is] to match against these
// values.
var (
	// ErrEntryNotFound is returned when a queue row with the requested id
	// does not exist.
	ErrEntryNotFound = errors.New("queue entry was not found")

	// ErrBlobNotFound is returned by [BlobStore.Get] when no payload is
	// stored under the requested key.
	ErrBlobNotFound = errors.New("blob was not found")

	// ErrTransient marks a backend failure that may succeed if attempted
	// again (connection loss, deadlock rollback, throttling). It is always
	// joined with the underlying cause.
	ErrTransient = errors.New("transient storage failure")

	// ErrUnknownDriver is returned when the configuration names a backend
	// that is not implemented.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

func joinTransient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
