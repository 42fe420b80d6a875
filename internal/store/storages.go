package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// Storages groups every storage backend the daemon needs into a single
// value that can be passed to the mediator and the shepherd pool.
type Storages struct {
	// Queue is the sqlite-backed durable change queue.
	Queue QueueRepository
	// Attributes backs the lock table and the version chains.
	Attributes AttributeStore
	// Blobs holds encrypted contents and encrypted path records.
	Blobs BlobStore

	dbs []*DB
}

// NewStorages initialises the storage layer from cfg. It performs the
// following steps:
//  1. Opens the sqlite queue database and runs its migrations.
//  2. Builds the attribute store selected by cfg.Metadata.Driver, running
//     the postgres migrations when needed.
//  3. Builds the blob store selected by cfg.Blobs.Driver. The file driver
//     writes through fs.
//
// Already opened databases are closed when a later step fails.
func NewStorages(ctx context.Context, cfg config.Storage, fs afero.Fs, clock clockwork.Clock, log *logger.Logger) (_ *Storages, err error) {
	log.Info().Msg("creating new storages...")

	s := &Storages{}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	queueDB, err := NewConnectSQLite(ctx, cfg.Queue, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}
	s.dbs = append(s.dbs, queueDB)
	if err = queueDB.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("queue migration failed: %w", err)
	}
	s.Queue = NewQueueRepository(queueDB, clock, log)

	switch cfg.Metadata.Driver {
	case config.DriverPostgres:
		pgDB, err := NewConnectPostgres(ctx, cfg.Metadata, log)
		if err != nil {
			return nil, fmt.Errorf("postgres connection error: %w", err)
		}
		s.dbs = append(s.dbs, pgDB)
		if err = pgDB.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("attribute store migration failed: %w", err)
		}
		s.Attributes = NewPostgresAttributeStore(pgDB, log)
	case config.DriverMemory:
		s.Attributes = NewMemoryAttributeStore()
	default:
		return nil, fmt.Errorf("%w: metadata driver %q", ErrUnknownDriver, cfg.Metadata.Driver)
	}

	switch cfg.Blobs.Driver {
	case config.DriverS3:
		s.Blobs, err = NewS3BlobStore(ctx, cfg.Blobs.S3, log)
	case config.DriverFile:
		s.Blobs, err = NewFileBlobStore(fs, cfg.Blobs.Dir, log)
	case config.DriverMemory:
		s.Blobs = NewMemoryBlobStore()
	default:
		err = fmt.Errorf("%w: blobs driver %q", ErrUnknownDriver, cfg.Blobs.Driver)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Close closes every database opened by [NewStorages].
func (s *Storages) Close() error {
	var errs []error
	for _, db := range s.dbs {
		errs = append(errs, db.Close())
	}
	s.dbs = nil
	return errors.Join(errs...)
}
