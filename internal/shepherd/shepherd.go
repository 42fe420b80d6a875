// Package shepherd implements the workers that carry one queue entry at a
// time through encryption, the metadata commit and the blob upload.
package shepherd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/metadata"
	"github.com/MKhiriev/lockbox/internal/utils"
	"github.com/MKhiriev/lockbox/models"
)

// Dependencies are the collaborators shared by every shepherd of a pool.
type Dependencies struct {
	Mediator  Mediator
	Encryptor Encryptor
	ObjectIDs ObjectIDs
	Metadata  MetadataStore
	Blobs     BlobStore
}

// Options tunes the commit pipeline.
type Options struct {
	// MaxCommitAttempts bounds how many times the Encrypting to Uploading
	// cycle runs after a version conflict or lock contention. Values below
	// one are treated as one.
	MaxCommitAttempts int
	// CallTimeout is the deadline of every remote call. Zero disables it.
	CallTimeout time.Duration
}

// Shepherd is a single worker. It accepts a job through [Shepherd.Assign]
// only while Ready and processes it on the goroutine running
// [Shepherd.Run].
type Shepherd struct {
	id   string
	deps Dependencies
	opts Options

	mu       sync.Mutex
	state    State
	job      models.QueueEntry
	stopping bool

	jobs chan models.QueueEntry
	quit chan struct{}
	once sync.Once

	logger *logger.Logger
}

// New returns a Ready shepherd.
func New(id string, deps Dependencies, opts Options, log *logger.Logger) *Shepherd {
	if opts.MaxCommitAttempts < 1 {
		opts.MaxCommitAttempts = 1
	}

	return &Shepherd{
		id:     id,
		deps:   deps,
		opts:   opts,
		state:  Ready,
		jobs:   make(chan models.QueueEntry, 1),
		quit:   make(chan struct{}),
		logger: log.WithComponent("shepherd"),
	}
}

func (s *Shepherd) ID() string {
	return s.id
}

// State returns the current state.
func (s *Shepherd) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether the shepherd accepts a job.
func (s *Shepherd) Ready() bool {
	return s.State() == Ready
}

// Job returns the entry being processed and whether there is one.
func (s *Shepherd) Job() (models.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job, s.state != Ready && s.state != Shutdown
}

// Assign hands entry to the shepherd. It fails with [ErrNotReady] unless the
// shepherd is Ready.
func (s *Shepherd) Assign(entry models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ready || s.stopping {
		return fmt.Errorf("%w: %s is %s", ErrNotReady, s.id, s.state)
	}
	s.job = entry
	s.state = AssignedAndReady
	s.jobs <- entry
	return nil
}

// Shutdown asks the shepherd to stop. A job in progress runs to completion
// first.
func (s *Shepherd) Shutdown() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopping = true
		if s.state == Ready {
			s.state = Shutdown
		}
		s.mu.Unlock()
		close(s.quit)
	})
}

// Run processes assigned jobs until Shutdown is called or ctx is done.
func (s *Shepherd) Run(ctx context.Context) {
	s.logger.Debug().Str("shepherd_id", s.id).Msg("shepherd started")
	defer s.setState(Shutdown)

	for {
		select {
		case job := <-s.jobs:
			s.process(ctx, job)
			continue
		default:
		}

		select {
		case job := <-s.jobs:
			s.process(ctx, job)
		case <-s.quit:
			s.logger.Debug().Str("shepherd_id", s.id).Msg("shepherd stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Shepherd) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// release clears the job and returns to Ready, or to Shutdown if a shutdown
// was requested meanwhile.
func (s *Shepherd) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.job = models.QueueEntry{}
	s.state = Ready
	if s.stopping {
		s.state = Shutdown
	}
}

func (s *Shepherd) process(ctx context.Context, job models.QueueEntry) {
	ctx = utils.WithShepherdID(ctx, s.id)
	ctx = utils.WithEntryID(ctx, job.ID)
	log := s.logger.With().
		Str("shepherd_id", s.id).
		Int64("entry_id", job.ID).
		Str("src_path", job.SrcPath).
		Logger()
	ctx = log.WithContext(ctx)

	final, err := s.execute(ctx, job)
	if err != nil {
		log.Err(err).Str("func", "Shepherd.process").Str("kind", string(job.Kind)).Msg("entry failed")
	} else {
		log.Info().Str("state", string(final)).Msg("entry finished")
	}

	s.report(ctx, job.ID, final)
	if err := s.deps.Mediator.Done(ctx, job.SrcPath, s.id); err != nil {
		log.Err(err).Str("func", "Shepherd.process").Msg("mediator rejected completion")
	}
	s.release()
}

// report forwards a state change to the mediator. Reports are
// observational, so a failure is only logged.
func (s *Shepherd) report(ctx context.Context, entryID int64, state models.EntryState) {
	if err := s.deps.Mediator.Update(ctx, entryID, state); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "Shepherd.report").
			Str("state", string(state)).
			Msg("failed to record entry state")
	}
}

// execute runs the pipeline for job and returns the terminal entry state.
func (s *Shepherd) execute(ctx context.Context, job models.QueueEntry) (models.EntryState, error) {
	if job.Kind == models.Deleted {
		return models.StateCanceled, nil
	}

	path := job.Event().TargetPath()
	objectID, err := s.deps.ObjectIDs.ObjectID(path)
	if err != nil {
		return models.StateFailed, err
	}

	log := logger.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		err := s.attempt(ctx, job.ID, objectID, path)
		if err == nil {
			return models.StateCompleted, nil
		}
		if !retryable(err) || attempt >= s.opts.MaxCommitAttempts {
			return models.StateFailed, err
		}
		log.Warn().Err(err).
			Str("object_id", objectID).
			Int("attempt", attempt).
			Msg("commit lost a race, retrying with a fresh head")
	}
}

// attempt is one Encrypting to Uploading cycle.
func (s *Shepherd) attempt(ctx context.Context, entryID int64, objectID, path string) error {
	s.setState(Encrypting)
	s.report(ctx, entryID, models.StateEncrypting)

	file, err := s.deps.Encryptor.Encrypt(ctx, path)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", path, err)
	}
	defer s.cleanup(ctx, file)

	var record models.ObjectVersionRecord
	err = s.call(ctx, func(ctx context.Context) error {
		record, err = s.deps.Metadata.Record(ctx, objectID)
		return err
	})
	if err != nil {
		return err
	}
	previous, err := metadata.Head(record.Versions)
	if err != nil {
		return fmt.Errorf("object %s: %w", objectID, err)
	}

	s.setState(Uploading)
	s.report(ctx, entryID, models.StateUploading)

	if err := s.commit(ctx, objectID, file, previous, record.PathHash); err != nil {
		return err
	}
	return s.upload(ctx, file)
}

// commit takes the object lock, records the new head and releases the lock.
func (s *Shepherd) commit(ctx context.Context, objectID string, file models.EncryptedFile, previous, pathHash string) error {
	log := logger.FromContext(ctx)

	var (
		acquired bool
		lock     models.LockRecord
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		acquired, lock, err = s.deps.Metadata.AcquireLock(ctx, objectID)
		return err
	})
	if err != nil {
		return fmt.Errorf("acquiring lock of %s: %w", objectID, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s held by %q", ErrLockContention, lock.ID, lock.Holder)
	}

	err = s.updateChain(ctx, objectID, file, previous, pathHash)
	if releaseErr := s.releaseLock(ctx, lock); releaseErr != nil {
		log.Err(releaseErr).Str("func", "Shepherd.commit").Str("lock_id", lock.ID).Msg("lock left to expire")
	}
	return err
}

func (s *Shepherd) updateChain(ctx context.Context, objectID string, file models.EncryptedFile, previous, pathHash string) error {
	if previous == "" && pathHash == "" {
		err := s.call(ctx, func(ctx context.Context) error {
			return s.deps.Metadata.SetPath(ctx, objectID, file.PathHash)
		})
		if err != nil {
			return err
		}
	}

	return s.call(ctx, func(ctx context.Context) error {
		return s.deps.Metadata.UpdateObject(ctx, objectID, file.ContentHash, previous)
	})
}

// releaseLock runs even when ctx is already canceled.
func (s *Shepherd) releaseLock(ctx context.Context, lock models.LockRecord) error {
	return s.call(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.deps.Metadata.ReleaseLock(ctx, lock)
	})
}

// upload writes the path blob, then the content blob.
func (s *Shepherd) upload(ctx context.Context, file models.EncryptedFile) error {
	err := s.call(ctx, func(ctx context.Context) error {
		return s.deps.Blobs.Put(ctx, file.PathHash, bytes.NewReader(file.PathBlob))
	})
	if err != nil {
		return fmt.Errorf("uploading path blob %s: %w", file.PathHash, err)
	}

	err = s.call(ctx, func(ctx context.Context) error {
		rc, err := s.deps.Encryptor.Open(file)
		if err != nil {
			return err
		}
		defer rc.Close()
		return s.deps.Blobs.Put(ctx, file.ContentHash, rc)
	})
	if err != nil {
		return fmt.Errorf("uploading content blob %s: %w", file.ContentHash, err)
	}
	return nil
}

func (s *Shepherd) cleanup(ctx context.Context, file models.EncryptedFile) {
	if err := s.deps.Encryptor.Remove(file); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("ciphertext", file.CiphertextPath).Msg("failed to remove ciphertext")
	}
}

// call runs fn under the per-call deadline.
func (s *Shepherd) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.opts.CallTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return fn(ctx)
}

// retryable reports whether a fresh head might let the commit through.
func retryable(err error) bool {
	return errors.Is(err, metadata.ErrVersionConflict) ||
		errors.Is(err, metadata.ErrPathAlreadySet) ||
		errors.Is(err, ErrLockContention)
}
