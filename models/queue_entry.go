// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"strings"
)

// EntryState is the recorded processing state of a [QueueEntry].
type EntryState string

const (
	StatePrepare    EntryState = "prepare"
	StateAssigned   EntryState = "assigned"
	StateEncrypting EntryState = "encrypting"
	StateUploading  EntryState = "uploading"
	StateCompleted  EntryState = "completed"
	StateCanceled   EntryState = "canceled"
	StateFailed     EntryState = "failed"
)

// ParseEntryState maps a textual state (case-insensitive) to an [EntryState].
func ParseEntryState(s string) (EntryState, error) {
	state := EntryState(strings.ToLower(strings.TrimSpace(s)))
	switch state {
	case StatePrepare, StateAssigned, StateEncrypting, StateUploading,
		StateCompleted, StateCanceled, StateFailed:
		return state, nil
	}
	return "", fmt.Errorf("unknown entry state %q", s)
}

// Terminal reports whether no further transition is expected for s.
func (s EntryState) Terminal() bool {
	return s == StateCompleted || s == StateCanceled || s == StateFailed
}

// InFlight reports whether a row in state s is owned by a shepherd.
func (s EntryState) InFlight() bool {
	return s == StateAssigned || s == StateEncrypting || s == StateUploading
}

// QueueEntry is a persisted row of the durable change queue.
//
// Rows are created in [StatePrepare] and are never deleted by the
// scheduling logic, so the table doubles as an audit log.
type QueueEntry struct {
	ID        int64      `json:"id"`
	Timestamp float64    `json:"timestamp"`
	State     EntryState `json:"state"`
	Kind      EventKind  `json:"kind"`
	SrcPath   string     `json:"src_path"`
	DestPath  string     `json:"dest_path,omitempty"`
}

// Event returns the change event the row was created from.
func (e QueueEntry) Event() ChangeEvent {
	return ChangeEvent{
		Timestamp: e.Timestamp,
		Kind:      e.Kind,
		SrcPath:   e.SrcPath,
		DestPath:  e.DestPath,
	}
}
