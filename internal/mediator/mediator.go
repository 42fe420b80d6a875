// Package mediator owns the durable change queue and the work-in-progress
// map, and hands queued entries to idle shepherds.
//
// The queue is an intent log: Enqueue only persists a row, so events are
// accepted while the coordinator is stopped and survive a restart. The
// coordinator assigns the oldest Prepare row whose path is not in progress
// to an idle worker. It sleeps between scans for at most PollInterval and is
// woken earlier by Enqueue and Done.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/store"
	"github.com/MKhiriev/lockbox/models"
	"github.com/jonboulle/clockwork"
)

// Worker is a shepherd as seen by the coordinator.
type Worker interface {
	ID() string
	Ready() bool
	Assign(entry models.QueueEntry) error
	Shutdown()
}

// Options tunes the coordinator.
type Options struct {
	// PollInterval is the longest sleep between two scans.
	PollInterval time.Duration
	// Retention is the age after which Completed rows are purged. Zero
	// keeps every row.
	Retention time.Duration
}

// Mediator is the single owner of the queue and the WIP map.
type Mediator struct {
	queue  store.QueueRepository
	opts   Options
	clock  clockwork.Clock
	logger *logger.Logger

	mu      sync.Mutex
	wip     map[string]string
	workers []Worker
	cancel  context.CancelFunc
	stop    chan struct{}
	wg      sync.WaitGroup

	wake chan struct{}
}

// New returns a stopped mediator over queue.
func New(queue store.QueueRepository, opts Options, clock clockwork.Clock, log *logger.Logger) *Mediator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	return &Mediator{
		queue:  queue,
		opts:   opts,
		clock:  clock,
		logger: log.WithComponent("mediator"),
		wip:    make(map[string]string),
		wake:   make(chan struct{}, 1),
	}
}

// Start recovers rows left in flight by a previous process and launches the
// coordinator over workers. The coordinator exits when Stop is called or
// ctx is done.
func (m *Mediator) Start(ctx context.Context, workers ...Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stop != nil {
		return ErrAlreadyRunning
	}

	reset, err := m.queue.ResetInFlight(ctx)
	if err != nil {
		m.logger.Err(err).Str("func", "Mediator.Start").Msg("failed to recover in-flight entries")
		return fmt.Errorf("error recovering in-flight entries: %w", err)
	}
	if reset > 0 {
		m.logger.Info().Int64("entries", reset).Msg("requeued entries left in flight")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.stop = make(chan struct{})
	m.workers = workers
	clear(m.wip)

	m.wg.Add(1)
	go m.run(loopCtx, m.stop)

	m.logger.Info().Int("workers", len(workers)).Msg("mediator started")
	return nil
}

// Stop prevents new assignments, waits for the coordinator to exit and then
// asks every worker to shut down. Jobs in progress are not interrupted.
func (m *Mediator) Stop() error {
	m.mu.Lock()
	stop, cancel, workers := m.stop, m.cancel, m.workers
	m.stop, m.cancel = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return ErrNotRunning
	}

	close(stop)
	m.wg.Wait()
	cancel()

	for _, w := range workers {
		w.Shutdown()
	}
	m.logger.Info().Msg("mediator stopped")
	return nil
}

// Enqueue persists event as a new Prepare row. It does not require the
// coordinator to be running.
func (m *Mediator) Enqueue(ctx context.Context, event models.ChangeEvent) (models.QueueEntry, error) {
	if err := validateEvent(event); err != nil {
		return models.QueueEntry{}, err
	}

	entry, err := m.queue.Enqueue(ctx, event)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "Mediator.Enqueue").
			Str("src_path", event.SrcPath).
			Msg("failed to enqueue event")
		return models.QueueEntry{}, fmt.Errorf("error enqueuing %s: %w", event.SrcPath, err)
	}

	m.notify()
	return entry, nil
}

// Update records the state of row id.
func (m *Mediator) Update(ctx context.Context, id int64, state models.EntryState) error {
	if err := m.queue.UpdateState(ctx, id, state); err != nil {
		return fmt.Errorf("error updating entry %d: %w", id, err)
	}
	return nil
}

// Done frees srcPath once the shepherd holding it has finished.
func (m *Mediator) Done(ctx context.Context, srcPath, shepherdID string) error {
	m.mu.Lock()
	holder, ok := m.wip[srcPath]
	if !ok || holder != shepherdID {
		m.mu.Unlock()
		logger.FromContext(ctx).Error().
			Str("func", "Mediator.Done").
			Str("src_path", srcPath).
			Str("shepherd_id", shepherdID).
			Str("holder", holder).
			Msg("work-in-progress mismatch")
		return fmt.Errorf("%w: %s held by %q, reported by %q", ErrWIPMismatch, srcPath, holder, shepherdID)
	}
	delete(m.wip, srcPath)
	m.mu.Unlock()

	m.notify()
	return nil
}

// WorkInProgress returns a copy of the path to shepherd map.
func (m *Mediator) WorkInProgress() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.wip)
}

// Get returns row id.
func (m *Mediator) Get(ctx context.Context, id int64) (models.QueueEntry, error) {
	return m.queue.Get(ctx, id)
}

// List returns rows in id order, optionally filtered by state.
func (m *Mediator) List(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error) {
	return m.queue.List(ctx, state, limit)
}

// Replay enqueues the event of a Failed or Canceled row again. The original
// row is kept for the audit trail.
func (m *Mediator) Replay(ctx context.Context, id int64) (models.QueueEntry, error) {
	entry, err := m.queue.Get(ctx, id)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if entry.State != models.StateFailed && entry.State != models.StateCanceled {
		return models.QueueEntry{}, fmt.Errorf("%w: entry %d is %s", ErrNotReplayable, id, entry.State)
	}

	event := entry.Event()
	event.Timestamp = models.UnixSeconds(m.clock.Now())
	return m.Enqueue(ctx, event)
}

func (m *Mediator) notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mediator) run(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	var purge <-chan time.Time
	if m.opts.Retention > 0 {
		m.purge(ctx)
		purgeTicker := m.clock.NewTicker(min(m.opts.Retention, time.Hour))
		defer purgeTicker.Stop()
		purge = purgeTicker.Chan()
	}

	for {
		m.dispatch(ctx, stop)

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-m.wake:
		case <-ticker.Chan():
		case <-purge:
			m.purge(ctx)
		}
	}
}

// dispatch assigns Prepare rows until no row or no idle worker is left.
func (m *Mediator) dispatch(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		worker := m.idleWorker()
		if worker == nil {
			return
		}

		entry, ok, err := m.queue.NextPrepared(ctx, m.busyPaths())
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				m.logger.Err(err).Str("func", "Mediator.dispatch").Msg("failed to select next entry")
			}
			return
		}
		if !ok {
			return
		}

		if err := m.assign(ctx, worker, entry); err != nil {
			m.logger.Err(err).
				Str("func", "Mediator.dispatch").
				Int64("entry_id", entry.ID).
				Str("shepherd_id", worker.ID()).
				Msg("failed to assign entry")
			return
		}
	}
}

// assign marks the row Assigned before handing it over so that the
// shepherd's own reports always land after it.
func (m *Mediator) assign(ctx context.Context, worker Worker, entry models.QueueEntry) error {
	if err := m.queue.UpdateState(ctx, entry.ID, models.StateAssigned); err != nil {
		return err
	}
	entry.State = models.StateAssigned

	m.mu.Lock()
	m.wip[entry.SrcPath] = worker.ID()
	m.mu.Unlock()

	if err := worker.Assign(entry); err != nil {
		m.mu.Lock()
		delete(m.wip, entry.SrcPath)
		m.mu.Unlock()

		if revertErr := m.queue.UpdateState(ctx, entry.ID, models.StatePrepare); revertErr != nil {
			return errors.Join(err, revertErr)
		}
		return err
	}

	m.logger.Debug().
		Int64("entry_id", entry.ID).
		Str("src_path", entry.SrcPath).
		Str("shepherd_id", worker.ID()).
		Msg("entry assigned")
	return nil
}

func (m *Mediator) idleWorker() Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if w.Ready() {
			return w
		}
	}
	return nil
}

func (m *Mediator) busyPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.wip))
	for path := range m.wip {
		paths = append(paths, path)
	}
	return paths
}

func (m *Mediator) purge(ctx context.Context) {
	purged, err := m.queue.PurgeCompleted(ctx, m.clock.Now().Add(-m.opts.Retention))
	if err != nil {
		m.logger.Err(err).Str("func", "Mediator.purge").Msg("failed to purge completed entries")
		return
	}
	if purged > 0 {
		m.logger.Info().Int64("entries", purged).Msg("purged completed entries")
	}
}

func validateEvent(event models.ChangeEvent) error {
	if !event.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, event.Kind)
	}
	if event.SrcPath == "" {
		return fmt.Errorf("%w: empty source path", ErrInvalidEvent)
	}
	if event.Kind == models.Moved && event.DestPath == "" {
		return fmt.Errorf("%w: move without destination", ErrInvalidEvent)
	}
	return nil
}
