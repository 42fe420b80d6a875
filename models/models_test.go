package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventKind(t *testing.T) {
	kind, err := ParseEventKind(" Moved ")
	require.NoError(t, err)
	assert.Equal(t, Moved, kind)

	_, err = ParseEventKind("touched")
	assert.Error(t, err)
}

func TestParseEntryState(t *testing.T) {
	state, err := ParseEntryState("FAILED")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, state)
	assert.True(t, state.Terminal())
	assert.False(t, state.InFlight())

	assert.True(t, StateEncrypting.InFlight())
	assert.False(t, StatePrepare.Terminal())

	_, err = ParseEntryState("sleeping")
	assert.Error(t, err)
}

func TestChangeEvent_TargetPath(t *testing.T) {
	assert.Equal(t, "b.txt", ChangeEvent{Kind: Moved, SrcPath: "a.txt", DestPath: "b.txt"}.TargetPath())
	assert.Equal(t, "a.txt", ChangeEvent{Kind: Modified, SrcPath: "a.txt", DestPath: "b.txt"}.TargetPath())
}

func TestQueueEntry_Event(t *testing.T) {
	entry := QueueEntry{ID: 3, Timestamp: 12.5, State: StateFailed, Kind: Moved, SrcPath: "a", DestPath: "b"}
	assert.Equal(t, ChangeEvent{Timestamp: 12.5, Kind: Moved, SrcPath: "a", DestPath: "b"}, entry.Event())
}

func TestUnixSeconds(t *testing.T) {
	assert.InDelta(t, 1.5, UnixSeconds(time.Unix(1, 500_000_000)), 1e-9)
}

func TestAppBuildInfo_String(t *testing.T) {
	info := NewAppBuildInfo("1.0.0", "", "abc123")
	assert.Equal(t, "1.0.0", info.BuildVersion())
	assert.Equal(t, "version 1.0.0, date N/A, commit abc123", info.String())
}
