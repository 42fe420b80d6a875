// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigratePostgres_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_ = mock // goose talks to the db itself; every query is unexpected

	err = MigratePostgres(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := MigrateSQLite(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error creating provider")
}

func TestMigrateSQLite_CreatesQueueTable(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, MigrateSQLite(ctx, db))
	// second run is a no-op
	require.NoError(t, MigrateSQLite(ctx, db))

	_, err = db.ExecContext(ctx,
		`INSERT INTO queue_entries (timestamp, state, kind, src_path, updated_at) VALUES (1.5, 'prepare', 'created', 'a.txt', 1.5)`)
	require.NoError(t, err)

	var id int64
	var destPath string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT id, dest_path FROM queue_entries`).Scan(&id, &destPath))
	assert.Equal(t, int64(1), id)
	assert.Empty(t, destPath)
}
