package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
	"github.com/jonboulle/clockwork"
)

// queueRepository is the sqlite-backed implementation of [QueueRepository].
// Every public method obtains a context-scoped logger via
// [logger.FromContext].
type queueRepository struct {
	*DB
	clock  clockwork.Clock
	logger *logger.Logger
}

// NewQueueRepository constructs a [QueueRepository] over an opened and
// migrated sqlite database.
func NewQueueRepository(db *DB, clock clockwork.Clock, logger *logger.Logger) QueueRepository {
	logger.Debug().Msg("creating queue repository")
	return &queueRepository{
		DB:     db,
		clock:  clock,
		logger: logger,
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, event models.ChangeEvent) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildEnqueueQuery(event, q.clock.Now())
	if err != nil {
		log.Err(err).Str("func", "queueRepository.Enqueue").Msg("failed to create query")
		return models.QueueEntry{}, err
	}

	res, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("src_path", event.SrcPath).
			Msg("failed to insert queue entry")
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return models.QueueEntry{
		ID:        id,
		Timestamp: event.Timestamp,
		State:     models.StatePrepare,
		Kind:      event.Kind,
		SrcPath:   event.SrcPath,
		DestPath:  event.DestPath,
	}, nil
}

func (q *queueRepository) NextPrepared(ctx context.Context, excluded []string) (models.QueueEntry, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildNextPreparedQuery(excluded)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.NextPrepared").Msg("failed to create query")
		return models.QueueEntry{}, false, err
	}

	entry, err := scanEntry(q.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueueEntry{}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.NextPrepared").
			Int("excluded", len(excluded)).
			Msg("failed to select next prepared entry")
		return models.QueueEntry{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, true, nil
}

func (q *queueRepository) UpdateState(ctx context.Context, id int64, state models.EntryState) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateStateQuery(id, state, q.clock.Now())
	if err != nil {
		log.Err(err).Str("func", "queueRepository.UpdateState").Msg("failed to create query")
		return err
	}

	res, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.UpdateState").
			Int64("entry_id", id).
			Str("state", string(state)).
			Msg("failed to update entry state")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (q *queueRepository) Get(ctx context.Context, id int64) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetEntryQuery(id)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.Get").Msg("failed to create query")
		return models.QueueEntry{}, err
	}

	entry, err := scanEntry(q.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueueEntry{}, ErrEntryNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "queueRepository.Get").Int64("entry_id", id).Msg("failed to get entry")
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

func (q *queueRepository) List(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEntriesQuery(state, limit)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.List").Msg("failed to create query")
		return nil, err
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.List").Str("state", string(state)).Msg("failed to list entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.QueueEntry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (q *queueRepository) ResetInFlight(ctx context.Context) (int64, error) {
	query, args, err := buildResetInFlightQuery(q.clock.Now())
	if err != nil {
		return 0, err
	}
	return q.execAffected(ctx, "queueRepository.ResetInFlight", query, args)
}

func (q *queueRepository) PurgeCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := buildPurgeCompletedQuery(cutoff)
	if err != nil {
		return 0, err
	}
	return q.execAffected(ctx, "queueRepository.PurgeCompleted", query, args)
}

func (q *queueRepository) execAffected(ctx context.Context, fn, query string, args []any) (int64, error) {
	log := logger.FromContext(ctx)

	res, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute statement")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.QueueEntry, error) {
	var entry models.QueueEntry
	var state, kind string
	err := row.Scan(&entry.ID, &entry.Timestamp, &state, &kind, &entry.SrcPath, &entry.DestPath)
	if err != nil {
		return models.QueueEntry{}, err
	}
	entry.State = models.EntryState(state)
	entry.Kind = models.EventKind(kind)
	return entry, nil
}
