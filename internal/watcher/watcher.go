// Package watcher turns file-system notifications under the sync root into
// change events on the durable queue.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/MKhiriev/lockbox/internal/crypto"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

// renameWindow is how long a rename waits for the matching create before it
// is reported as a deletion.
const renameWindow = 100 * time.Millisecond

// Enqueuer accepts change events.
type Enqueuer interface {
	Enqueue(ctx context.Context, event models.ChangeEvent) (models.QueueEntry, error)
}

// Watcher watches root recursively. fsnotify reports a move as a rename of
// the old name followed by a create of the new one; the pair is reported as
// a single Moved event.
type Watcher struct {
	root   string
	fs     afero.Fs
	queue  Enqueuer
	clock  clockwork.Clock
	logger *logger.Logger
}

func New(root string, queue Enqueuer, clock clockwork.Clock, log *logger.Logger) *Watcher {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Watcher{
		root:   root,
		fs:     afero.NewOsFs(),
		queue:  queue,
		clock:  clock,
		logger: log.WithComponent("watcher"),
	}
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer notify.Close()

	if err := w.addTree(notify, w.root); err != nil {
		return err
	}
	w.logger.Info().Str("root", w.root).Msg("watching")

	var (
		pending *fsnotify.Event
		expire  <-chan time.Time
	)
	flush := func() {
		if pending != nil {
			w.emit(ctx, models.Deleted, pending.Name, "")
			pending, expire = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		case <-expire:
			flush()
		case err, ok := <-notify.Errors:
			if !ok {
				return nil
			}
			w.logger.Err(err).Str("func", "Watcher.Run").Msg("watch error")
		case event, ok := <-notify.Events:
			if !ok {
				return nil
			}
			if pending != nil && event.Has(fsnotify.Create) {
				from := pending.Name
				pending, expire = nil, nil
				w.created(ctx, notify, event.Name, from)
				continue
			}
			flush()

			switch {
			case event.Has(fsnotify.Create):
				w.created(ctx, notify, event.Name, "")
			case event.Has(fsnotify.Write):
				w.emit(ctx, models.Modified, event.Name, "")
			case event.Has(fsnotify.Remove):
				w.emit(ctx, models.Deleted, event.Name, "")
			case event.Has(fsnotify.Rename):
				pending = &event
				expire = w.clock.After(renameWindow)
			}
		}
	}
}

// created handles a new name. A new directory is watched and its files are
// reported, since they may have been created before the watch was added. The
// files of a renamed directory are reported as moved from the old name.
func (w *Watcher) created(ctx context.Context, notify *fsnotify.Watcher, path, movedFrom string) {
	info, err := w.fs.Stat(path)
	if err != nil {
		// gone again already
		return
	}
	if !info.IsDir() {
		if movedFrom != "" {
			w.emit(ctx, models.Moved, movedFrom, path)
			return
		}
		w.emit(ctx, models.Created, path, "")
		return
	}

	if err := w.addTree(notify, path); err != nil {
		w.logger.Err(err).Str("func", "Watcher.created").Str("dir", path).Msg("failed to watch directory")
	}
	_ = afero.Walk(w.fs, path, func(p string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if movedFrom == "" {
			w.emit(ctx, models.Created, p, "")
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return nil
		}
		w.emit(ctx, models.Moved, filepath.Join(movedFrom, rel), p)
		return nil
	})
}

// addTree watches dir and all its subdirectories, as fsnotify is not
// recursive.
func (w *Watcher) addTree(notify *fsnotify.Watcher, dir string) error {
	return afero.Walk(w.fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !fi.IsDir() {
			return nil
		}
		if err := notify.Add(path); err != nil {
			return fmt.Errorf("watch %q: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) emit(ctx context.Context, kind models.EventKind, src, dest string) {
	event := models.ChangeEvent{
		Timestamp: models.UnixSeconds(w.clock.Now()),
		Kind:      kind,
	}

	var err error
	if event.SrcPath, err = crypto.Relative(w.root, src); err != nil {
		w.logger.Warn().Err(err).Str("path", src).Msg("ignoring event outside root")
		return
	}
	if dest != "" {
		if event.DestPath, err = crypto.Relative(w.root, dest); err != nil {
			w.logger.Warn().Err(err).Str("path", dest).Msg("ignoring event outside root")
			return
		}
	}

	// a failed enqueue drops the event
	if _, err := w.queue.Enqueue(ctx, event); err != nil {
		w.logger.Err(err).
			Str("func", "Watcher.emit").
			Str("kind", string(kind)).
			Str("src_path", event.SrcPath).
			Msg("dropped change event")
		return
	}
	w.logger.Debug().Str("kind", string(kind)).Str("src_path", event.SrcPath).Msg("change enqueued")
}
