package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

type chanQueue struct {
	events chan models.ChangeEvent
	err    error
}

func (q *chanQueue) Enqueue(_ context.Context, event models.ChangeEvent) (models.QueueEntry, error) {
	if q.err != nil {
		return models.QueueEntry{}, q.err
	}
	q.events <- event
	return models.QueueEntry{Kind: event.Kind, SrcPath: event.SrcPath, DestPath: event.DestPath}, nil
}

func startWatcher(t *testing.T, root string, q *chanQueue) {
	t.Helper()
	w := New(root, q, clockwork.NewRealClock(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// let the watch be installed
	time.Sleep(50 * time.Millisecond)
}

// waitEvent skips events until one matches kind and path.
func waitEvent(t *testing.T, q *chanQueue, kind models.EventKind, path string) models.ChangeEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event := <-q.events:
			if event.Kind == kind && event.SrcPath == path {
				return event
			}
		case <-timeout:
			t.Fatalf("no %s event for %s", kind, path)
			return models.ChangeEvent{}
		}
	}
}

func TestWatcher_FileLifecycle(t *testing.T) {
	root := t.TempDir()
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	file := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))
	event := waitEvent(t, q, models.Created, "notes.txt")
	assert.Positive(t, event.Timestamp)

	require.NoError(t, os.WriteFile(file, []byte("b"), 0o644))
	waitEvent(t, q, models.Modified, "notes.txt")

	require.NoError(t, os.Remove(file))
	waitEvent(t, q, models.Deleted, "notes.txt")
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	dir := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(dir, 0o755))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	waitEvent(t, q, models.Created, "docs/a.txt")
}

func TestWatcher_ExistingSubdirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "deep.txt"), []byte("x"), 0o644))
	waitEvent(t, q, models.Created, "a/b/deep.txt")
}

func TestWatcher_RenameIsMoved(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "draft.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	require.NoError(t, os.Rename(src, filepath.Join(root, "final.txt")))
	event := waitEvent(t, q, models.Moved, "draft.txt")
	assert.Equal(t, "final.txt", event.DestPath)
	assert.Equal(t, "final.txt", event.TargetPath())
}

func TestWatcher_DirectoryRenameMovesEachFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "old", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old", "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old", "sub", "b.txt"), []byte("b"), 0o644))
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	require.NoError(t, os.Rename(filepath.Join(root, "old"), filepath.Join(root, "new")))

	event := waitEvent(t, q, models.Moved, "old/a.txt")
	assert.Equal(t, "new/a.txt", event.DestPath)
	event = waitEvent(t, q, models.Moved, "old/sub/b.txt")
	assert.Equal(t, "new/sub/b.txt", event.DestPath)
}

func TestWatcher_MoveOutOfRootIsDeleted(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	src := filepath.Join(root, "leaving.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	q := &chanQueue{events: make(chan models.ChangeEvent, 64)}
	startWatcher(t, root, q)

	require.NoError(t, os.Rename(src, filepath.Join(outside, "leaving.txt")))
	waitEvent(t, q, models.Deleted, "leaving.txt")
}

func TestWatcher_EnqueueFailureDropsEvent(t *testing.T) {
	root := t.TempDir()
	q := &chanQueue{events: make(chan models.ChangeEvent, 1), err: errors.New("queue offline")}
	startWatcher(t, root, q)

	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, q.events)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), &chanQueue{}, clockwork.NewRealClock(), logger.Nop())
	assert.Error(t, w.Run(context.Background()))
}
