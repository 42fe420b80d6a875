// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttributeStore(t *testing.T) (*postgresAttributeStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	store := &postgresAttributeStore{
		DB:     &DB{DB: db, logger: l, errorClassificator: NewPostgresErrorClassifier()},
		logger: l,
	}
	return store, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

// ── GetAttributes ─────────────────────────────────────────────────────────────

func TestPostgresAttributes_GetAttributes(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	rows := sqlmock.NewRows([]string{"name", "value"}).
		AddRow("h1", "").
		AddRow("path", "p1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, value FROM attributes WHERE domain = $1 AND item = $2")).
		WithArgs("data", "obj").
		WillReturnRows(rows)

	attrs, err := store.GetAttributes(context.Background(), "data", "obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"h1": "", "path": "p1"}, attrs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_GetAttributes_MissingItemIsEmpty(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectQuery("SELECT name, value FROM attributes").
		WithArgs("data", "new").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}))

	attrs, err := store.GetAttributes(context.Background(), "data", "new")
	require.NoError(t, err)
	assert.NotNil(t, attrs)
	assert.Empty(t, attrs)
}

func TestPostgresAttributes_GetAttributes_TransientError(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectQuery("SELECT name, value FROM attributes").
		WillReturnError(pgError(pgerrcode.ConnectionFailure))

	_, err := store.GetAttributes(context.Background(), "data", "obj")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ── PutAttributes ─────────────────────────────────────────────────────────────

func TestPostgresAttributes_PutAttributes(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockDomain)).
		WithArgs("locks").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attributes (domain,item,name,value) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)")).
		WithArgs("locks", "obj-lock-1", "acquired_at", "100", "locks", "obj-lock-1", "holder", "me").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := store.PutAttributes(context.Background(), "locks", "obj-lock-1", map[string]string{"holder": "me", "acquired_at": "100"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_PutAttributes_Empty(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	require.NoError(t, store.PutAttributes(context.Background(), "locks", "obj", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_PutAttributes_Errors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{name: "deadlock is transient", err: pgError(pgerrcode.DeadlockDetected), wantTransient: true},
		{name: "check violation is permanent", err: pgError(pgerrcode.CheckViolation), wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newTestAttributeStore(t)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(lockDomain)).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("INSERT INTO attributes").WillReturnError(tt.err)
			mock.ExpectRollback()

			err := store.PutAttributes(context.Background(), "data", "obj", map[string]string{"h1": ""})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExecutingStatement)
			assert.Equal(t, tt.wantTransient, errorsIs(err, ErrTransient))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresAttributes_PutAttributes_BeginFails(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectBegin().WillReturnError(pgError(pgerrcode.CannotConnectNow))

	err := store.PutAttributes(context.Background(), "data", "obj", map[string]string{"h1": ""})
	assert.ErrorIs(t, err, ErrBeginningTransaction)
	assert.ErrorIs(t, err, ErrTransient)
}

// ── ModifyAttributes ──────────────────────────────────────────────────────────

func TestPostgresAttributes_ModifyAttributes_ReadsAndWritesInOneTransaction(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockDomain)).
		WithArgs("data").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name, value FROM attributes WHERE domain = $1 AND item = $2")).
		WithArgs("data", "obj").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).AddRow("h1", ""))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attributes (domain,item,name,value) VALUES ($1,$2,$3,$4)")).
		WithArgs("data", "obj", "h2", "h1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen map[string]string
	err := store.ModifyAttributes(context.Background(), "data", "obj", func(current map[string]string) (map[string]string, error) {
		seen = current
		return map[string]string{"h2": "h1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"h1": ""}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_ModifyAttributes_RejectedChangeRollsBack(t *testing.T) {
	store, mock := newTestAttributeStore(t)
	rejected := errors.New("stale head")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockDomain)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, value FROM attributes").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).AddRow("h1", ""))
	mock.ExpectRollback()

	err := store.ModifyAttributes(context.Background(), "data", "obj", func(map[string]string) (map[string]string, error) {
		return nil, rejected
	})
	assert.ErrorIs(t, err, rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_ModifyAttributes_NoChangeCommitsNothing(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockDomain)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, value FROM attributes").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}))
	mock.ExpectCommit()

	err := store.ModifyAttributes(context.Background(), "data", "obj", func(current map[string]string) (map[string]string, error) {
		assert.Empty(t, current)
		return nil, nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributes_ModifyAttributes_TransientReadError(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockDomain)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, value FROM attributes").WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectRollback()

	err := store.ModifyAttributes(context.Background(), "data", "obj", func(map[string]string) (map[string]string, error) {
		t.Fatal("fn must not run after a failed read")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrTransient)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── SelectByPrefix ────────────────────────────────────────────────────────────

func TestPostgresAttributes_SelectByPrefix_GroupsBySeq(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	rows := sqlmock.NewRows([]string{"item", "name", "value", "seq"}).
		AddRow("obj-lock-a", "holder", "first", 3).
		AddRow("obj-lock-a", "acquired_at", "10", 4).
		AddRow("obj-lock-b", "holder", "second", 7).
		AddRow("obj-lock-b", "acquired_at", "11", 8)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT item, name, value, seq FROM attributes WHERE domain = $1 AND item LIKE $2 ORDER BY seq ASC")).
		WithArgs("locks", "obj-lock-%").
		WillReturnRows(rows)

	items, err := store.SelectByPrefix(context.Background(), "locks", "obj-lock-")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "obj-lock-a", items[0].Name)
	assert.Equal(t, int64(3), items[0].Seq)
	assert.Equal(t, map[string]string{"holder": "first", "acquired_at": "10"}, items[0].Attributes)
	assert.Equal(t, "obj-lock-b", items[1].Name)
	assert.Equal(t, int64(7), items[1].Seq)
}

// ── DeleteItem ────────────────────────────────────────────────────────────────

func TestPostgresAttributes_DeleteItem(t *testing.T) {
	store, mock := newTestAttributeStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attributes WHERE domain = $1 AND item = $2")).
		WithArgs("locks", "obj-lock-a").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.DeleteItem(context.Background(), "locks", "obj-lock-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
