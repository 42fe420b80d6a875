// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the lockboxctl side of the status API.
//
// [StatusAdapter] hides the transport from the command-line tool. Error
// values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrConflict] when
// an entry cannot be replayed).
package adapter

import (
	"context"

	"github.com/MKhiriev/lockbox/models"
)

// StatusAdapter talks to a running lockbox daemon.
type StatusAdapter interface {
	// ListEntries returns queue rows in id order. An empty state lists every
	// row.
	ListEntries(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error)

	// GetEntry returns one queue row. A missing row yields [ErrNotFound].
	GetEntry(ctx context.Context, id int64) (models.QueueEntry, error)

	// Replay re-enqueues a failed or canceled row and returns the new row.
	// Rows in any other state yield [ErrConflict].
	Replay(ctx context.Context, id int64) (models.QueueEntry, error)

	// WorkInProgress returns the path to shepherd map of the daemon.
	WorkInProgress(ctx context.Context) (map[string]string, error)

	// Version returns the daemon's build version.
	Version(ctx context.Context) (string, error)
}
