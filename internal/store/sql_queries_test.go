// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/lockbox/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildNextPreparedQuery_NoExclusions(t *testing.T) {
	query, args, err := buildNextPreparedQuery(nil)
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "from queue_entries")
	assert.Contains(t, q, "where state = ?")
	assert.Contains(t, q, "order by id asc")
	assert.Contains(t, q, "limit 1")
	assert.NotContains(t, q, "not in")
	assert.Equal(t, []any{models.StatePrepare}, args)
}

func Test_buildNextPreparedQuery_ExcludesPaths(t *testing.T) {
	query, args, err := buildNextPreparedQuery([]string{"a.txt", "b.txt"})
	require.NoError(t, err)

	assert.Contains(t, query, "src_path NOT IN (?,?)")
	require.Len(t, args, 3)
	assert.Equal(t, "a.txt", args[1])
	assert.Equal(t, "b.txt", args[2])
}

func Test_buildListEntriesQuery(t *testing.T) {
	tests := []struct {
		name      string
		state     models.EntryState
		limit     int
		wantWhere bool
		wantLimit bool
	}{
		{name: "all rows", wantWhere: false, wantLimit: false},
		{name: "filtered", state: models.StateFailed, wantWhere: true},
		{name: "limited", limit: 10, wantLimit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, err := buildListEntriesQuery(tt.state, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWhere, strings.Contains(query, "WHERE state = ?"))
			assert.Equal(t, tt.wantLimit, strings.Contains(query, "LIMIT 10"))
		})
	}
}

func Test_buildResetInFlightQuery(t *testing.T) {
	query, args, err := buildResetInFlightQuery(time.Unix(10, 0))
	require.NoError(t, err)

	assert.Contains(t, query, "state IN (?,?,?)")
	assert.Equal(t, []any{models.StatePrepare, float64(10), models.StateAssigned, models.StateEncrypting, models.StateUploading}, args)
}

func Test_buildPutAttributesQuery_SortedUpsert(t *testing.T) {
	query, args, err := buildPutAttributesQuery("data", "obj", map[string]string{"h2": "h1", "path": "p"})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO attributes (domain,item,name,value) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)")
	assert.Contains(t, query, "ON CONFLICT (domain, item, name) DO UPDATE SET value = EXCLUDED.value")
	assert.Equal(t, []any{"data", "obj", "h2", "h1", "data", "obj", "path", "p"}, args)
}

func Test_buildSelectByPrefixQuery_EscapesWildcards(t *testing.T) {
	query, args, err := buildSelectByPrefixQuery("locks", "a_b%-lock-")
	require.NoError(t, err)

	assert.Contains(t, query, "item LIKE $2")
	assert.Contains(t, query, "ORDER BY seq ASC")
	assert.Equal(t, []any{"locks", `a\_b\%-lock-%`}, args)
}

func Test_buildDeleteItemQuery(t *testing.T) {
	query, args, err := buildDeleteItemQuery("locks", "x-lock-1")
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM attributes WHERE domain = $1 AND item = $2", query)
	assert.Equal(t, []any{"locks", "x-lock-1"}, args)
}
