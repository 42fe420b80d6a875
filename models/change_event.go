// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"strings"
	"time"
)

// EventKind is the kind of file-system change reported by the watcher.
type EventKind string

const (
	Created  EventKind = "created"
	Modified EventKind = "modified"
	Moved    EventKind = "moved"
	Deleted  EventKind = "deleted"
)

// ParseEventKind maps a textual kind (case-insensitive) to an [EventKind].
func ParseEventKind(s string) (EventKind, error) {
	kind := EventKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return kind, nil
}

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case Created, Modified, Moved, Deleted:
		return true
	}
	return false
}

// ChangeEvent is a single change notification produced by the watcher.
// It is immutable and consumed exactly once by the mediator.
type ChangeEvent struct {
	// Timestamp is the moment the change was observed, in fractional Unix
	// seconds.
	Timestamp float64   `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	SrcPath   string    `json:"src_path"`
	// DestPath is set only for [Moved] events.
	DestPath string `json:"dest_path,omitempty"`
}

// TargetPath returns the path whose content should be synchronized: the
// destination for moves, the source otherwise.
func (e ChangeEvent) TargetPath() string {
	if e.Kind == Moved && e.DestPath != "" {
		return e.DestPath
	}
	return e.SrcPath
}

// UnixSeconds converts t to the fractional Unix seconds used by event and
// queue timestamps.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
