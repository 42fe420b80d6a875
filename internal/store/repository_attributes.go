package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

// postgresAttributeStore is the PostgreSQL-backed implementation of
// [AttributeStore]. Items live in the "attributes" table, one row per
// (domain, item, name); the bigserial seq column provides insertion order.
//
// Failures classified as retryable by [PostgresErrorClassifier] are joined
// with [ErrTransient].
type postgresAttributeStore struct {
	*DB
	logger *logger.Logger
}

// NewPostgresAttributeStore constructs an [AttributeStore] over an opened
// and migrated postgres database.
func NewPostgresAttributeStore(db *DB, logger *logger.Logger) AttributeStore {
	logger.Debug().Msg("creating postgres attribute store")
	return &postgresAttributeStore{
		DB:     db,
		logger: logger,
	}
}

func (p *postgresAttributeStore) GetAttributes(ctx context.Context, domain, item string) (map[string]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetAttributesQuery(domain, item)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.GetAttributes").Msg("failed to create query")
		return nil, err
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "postgresAttributeStore.GetAttributes").
			Str("domain", domain).
			Str("item", item).
			Msg("failed to query attributes")
		return nil, p.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	attrs, err := scanAttributes(rows)
	if err != nil {
		return nil, p.classify(err)
	}
	return attrs, nil
}

// scanAttributes collects name/value rows and closes rows.
func scanAttributes(rows *sql.Rows) (map[string]string, error) {
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		attrs[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return attrs, nil
}

// PutAttributes upserts attrs inside a transaction holding the domain's
// advisory lock, so rows of concurrent writers get seq values in commit
// order.
func (p *postgresAttributeStore) PutAttributes(ctx context.Context, domain, item string, attrs map[string]string) error {
	if len(attrs) == 0 {
		return nil
	}

	return p.withDomainLock(ctx, domain, func(tx *sql.Tx) error {
		return p.put(ctx, tx, domain, item, attrs)
	})
}

// ModifyAttributes reads item and writes the result of fn in the same
// transaction. The domain's advisory lock keeps any other writer out between
// the read and the write.
func (p *postgresAttributeStore) ModifyAttributes(ctx context.Context, domain, item string, fn ModifyFunc) error {
	log := logger.FromContext(ctx)

	query, args, err := buildGetAttributesQuery(domain, item)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.ModifyAttributes").Msg("failed to create query")
		return err
	}

	return p.withDomainLock(ctx, domain, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			log.Err(err).
				Str("func", "postgresAttributeStore.ModifyAttributes").
				Str("domain", domain).
				Str("item", item).
				Msg("failed to query attributes")
			return p.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
		}
		current, err := scanAttributes(rows)
		if err != nil {
			return p.classify(err)
		}

		attrs, err := fn(current)
		if err != nil {
			return err
		}
		if len(attrs) == 0 {
			return nil
		}
		return p.put(ctx, tx, domain, item, attrs)
	})
}

func (p *postgresAttributeStore) put(ctx context.Context, tx *sql.Tx, domain, item string, attrs map[string]string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildPutAttributesQuery(domain, item, attrs)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.put").Msg("failed to create query")
		return err
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "postgresAttributeStore.put").
			Str("domain", domain).
			Str("item", item).
			Msg("failed to upsert attributes")
		return p.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}
	return nil
}

// withDomainLock runs fn in a transaction that holds the advisory lock of
// domain. The transaction is committed only when fn succeeds.
func (p *postgresAttributeStore) withDomainLock(ctx context.Context, domain string, fn func(tx *sql.Tx) error) error {
	log := logger.FromContext(ctx)

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.withDomainLock").Msg("failed to begin transaction")
		return p.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, lockDomain, domain); err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.withDomainLock").Str("domain", domain).Msg("failed to lock domain")
		return p.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.withDomainLock").Msg("failed to commit transaction")
		return p.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	return nil
}

// SelectByPrefix groups attribute rows into items. Rows arrive in seq
// order, so the first row of an item carries its smallest seq.
func (p *postgresAttributeStore) SelectByPrefix(ctx context.Context, domain, prefix string) ([]models.Item, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectByPrefixQuery(domain, prefix)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.SelectByPrefix").Msg("failed to create query")
		return nil, err
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "postgresAttributeStore.SelectByPrefix").
			Str("domain", domain).
			Str("prefix", prefix).
			Msg("failed to select items by prefix")
		return nil, p.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	items := make([]models.Item, 0, 4)
	index := make(map[string]int)
	for rows.Next() {
		var item, name, value string
		var seq int64
		if err := rows.Scan(&item, &name, &value, &seq); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		i, ok := index[item]
		if !ok {
			i = len(items)
			index[item] = i
			items = append(items, models.Item{Name: item, Attributes: make(map[string]string), Seq: seq})
		}
		items[i].Attributes[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, p.classify(fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return items, nil
}

func (p *postgresAttributeStore) DeleteItem(ctx context.Context, domain, item string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteItemQuery(domain, item)
	if err != nil {
		log.Err(err).Str("func", "postgresAttributeStore.DeleteItem").Msg("failed to create query")
		return err
	}

	if _, err = p.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "postgresAttributeStore.DeleteItem").
			Str("domain", domain).
			Str("item", item).
			Msg("failed to delete item")
		return p.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return nil
}
