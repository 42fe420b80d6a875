package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/lockbox/models"
)

const queueTable = "queue_entries"

var queueColumns = []string{"id", "timestamp", "state", "kind", "src_path", "dest_path"}

// sqlite uses the default "?" placeholders.
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildEnqueueQuery(event models.ChangeEvent, now time.Time) (string, []any, error) {
	query, args, err := sqlite.
		Insert(queueTable).
		Columns("timestamp", "state", "kind", "src_path", "dest_path", "updated_at").
		Values(event.Timestamp, models.StatePrepare, event.Kind, event.SrcPath, event.DestPath, models.UnixSeconds(now)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildNextPreparedQuery(excluded []string) (string, []any, error) {
	builder := sqlite.
		Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"state": models.StatePrepare})
	if len(excluded) > 0 {
		builder = builder.Where(sq.NotEq{"src_path": excluded})
	}

	query, args, err := builder.OrderBy("id ASC").Limit(1).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildUpdateStateQuery(id int64, state models.EntryState, now time.Time) (string, []any, error) {
	query, args, err := sqlite.
		Update(queueTable).
		Set("state", state).
		Set("updated_at", models.UnixSeconds(now)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetEntryQuery(id int64) (string, []any, error) {
	query, args, err := sqlite.
		Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildListEntriesQuery(state models.EntryState, limit int) (string, []any, error) {
	builder := sqlite.
		Select(queueColumns...).
		From(queueTable).
		OrderBy("id ASC")
	if state != "" {
		builder = builder.Where(sq.Eq{"state": state})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildResetInFlightQuery(now time.Time) (string, []any, error) {
	query, args, err := sqlite.
		Update(queueTable).
		Set("state", models.StatePrepare).
		Set("updated_at", models.UnixSeconds(now)).
		Where(sq.Eq{"state": []models.EntryState{models.StateAssigned, models.StateEncrypting, models.StateUploading}}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildPurgeCompletedQuery(cutoff time.Time) (string, []any, error) {
	query, args, err := sqlite.
		Delete(queueTable).
		Where(sq.Eq{"state": models.StateCompleted}).
		Where(sq.Lt{"updated_at": models.UnixSeconds(cutoff)}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

const attributesTable = "attributes"

var postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// lockDomain serializes writers of one domain so that seq order equals
// commit order.
const lockDomain = `SELECT pg_advisory_xact_lock(hashtext($1))`

func buildGetAttributesQuery(domain, item string) (string, []any, error) {
	query, args, err := postgres.
		Select("name", "value").
		From(attributesTable).
		Where(sq.Eq{"domain": domain, "item": item}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildPutAttributesQuery(domain, item string, attrs map[string]string) (string, []any, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	builder := postgres.
		Insert(attributesTable).
		Columns("domain", "item", "name", "value")
	for _, name := range names {
		builder = builder.Values(domain, item, name, attrs[name])
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (domain, item, name) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectByPrefixQuery(domain, prefix string) (string, []any, error) {
	query, args, err := postgres.
		Select("item", "name", "value", "seq").
		From(attributesTable).
		Where(sq.Eq{"domain": domain}).
		Where(sq.Like{"item": escapeLike(prefix) + "%"}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteItemQuery(domain, item string) (string, []any, error) {
	query, args, err := postgres.
		Delete(attributesTable).
		Where(sq.Eq{"domain": domain, "item": item}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
