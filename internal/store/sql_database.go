package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/lockbox/internal/logger"
)

// DB wraps a database handle with the logger and error classifier of its
// backend.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	migrate            func(ctx context.Context, db *sql.DB) error
	logger             *logger.Logger
}

// Migrate applies the schema migrations of the backend the DB was opened
// for.
func (db *DB) Migrate(ctx context.Context) error {
	if db.migrate == nil {
		return nil
	}
	return db.migrate(ctx, db.DB)
}

// classify returns err joined with [ErrTransient] when the backend considers
// it retryable.
func (db *DB) classify(err error) error {
	if err == nil || db.errorClassificator == nil {
		return err
	}
	if db.errorClassificator.Classify(err) == Retryable {
		return joinTransient(err)
	}
	return err
}
