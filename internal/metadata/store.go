// Package metadata implements the lock table and the per-object version
// chains on top of a strongly consistent [store.AttributeStore].
//
// Locks are optimistic: a client writes a uniquely named candidate record
// and re-reads the object's lock prefix to detect a concurrent writer.
// Version chains store one attribute per commit, {new_hash: predecessor},
// rooted at the empty predecessor.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/internal/store"
	"github.com/MKhiriev/lockbox/models"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"
)

// Lock record attributes.
const (
	attrLockName   = "lock_name"
	attrHolder     = "holder"
	attrAcquiredAt = "acquired_at"

	lockInfix = "-lock-"
)

// IDGenerator produces the random suffix of lock records.
type IDGenerator interface {
	Generate() string
}

// Options configures a [Store].
type Options struct {
	// LockDomain holds lock records, DataDomain holds version records.
	LockDomain string
	DataDomain string
	// Holder is recorded in every lock taken through the store.
	Holder string
	// LockTimeout is the age after which a lock record is ignored.
	LockTimeout time.Duration
	// WriteRetries bounds retries of transient write failures.
	WriteRetries int
	// RetryDelay is the base delay between write retries.
	RetryDelay time.Duration
}

// Store is the metadata store client. It is safe for concurrent use.
type Store struct {
	attrs  store.AttributeStore
	opts   Options
	clock  clockwork.Clock
	ids    IDGenerator
	logger *logger.Logger
}

// NewStore returns a metadata store over attrs.
func NewStore(attrs store.AttributeStore, opts Options, clock clockwork.Clock, ids IDGenerator, log *logger.Logger) *Store {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	if opts.WriteRetries < 0 {
		opts.WriteRetries = 0
	}

	return &Store{
		attrs:  attrs,
		opts:   opts,
		clock:  clock,
		ids:    ids,
		logger: log,
	}
}

// AcquireLock tries to take the lock of objectID. It returns (true, lock)
// when the caller now holds the lock and (false, other) when a live record
// of another client guards the object.
//
// After writing its candidate the caller re-reads the prefix and concedes
// only to a live record the store inserted earlier than the candidate, so of
// several concurrent contenders exactly one wins.
func (s *Store) AcquireLock(ctx context.Context, objectID string) (bool, models.LockRecord, error) {
	log := logger.FromContext(ctx)
	prefix := objectID + lockInfix

	existing, err := s.liveLocks(ctx, prefix)
	if err != nil {
		return false, models.LockRecord{}, err
	}
	if len(existing) > 0 {
		log.Debug().
			Str("object_id", objectID).
			Str("lock_id", existing[0].ID).
			Str("holder", existing[0].Holder).
			Msg("object is locked")
		return false, existing[0], nil
	}

	candidate := models.LockRecord{
		ID:         prefix + s.ids.Generate(),
		ObjectID:   objectID,
		Holder:     s.opts.Holder,
		AcquiredAt: s.clock.Now().UTC(),
	}
	err = s.write(ctx, func(ctx context.Context) error {
		return s.attrs.PutAttributes(ctx, s.opts.LockDomain, candidate.ID, map[string]string{
			attrLockName:   objectID,
			attrHolder:     candidate.Holder,
			attrAcquiredAt: candidate.AcquiredAt.Format(time.RFC3339Nano),
		})
	})
	if err != nil {
		log.Err(err).Str("func", "Store.AcquireLock").Str("object_id", objectID).Msg("failed to write lock candidate")
		return false, models.LockRecord{}, fmt.Errorf("error writing lock candidate: %w", err)
	}

	live, err := s.liveLocks(ctx, prefix)
	if err != nil {
		return false, models.LockRecord{}, err
	}

	position := -1
	for i, rec := range live {
		if rec.ID == candidate.ID {
			position = i
			candidate.Seq = rec.Seq
			break
		}
	}
	if position == 0 {
		return true, candidate, nil
	}

	if err := s.ReleaseLock(ctx, candidate); err != nil {
		return false, models.LockRecord{}, err
	}
	if position < 0 {
		return false, models.LockRecord{}, fmt.Errorf("%w: %s", ErrLockVanished, candidate.ID)
	}

	// an older live record exists
	log.Debug().
		Str("object_id", objectID).
		Str("lock_id", live[0].ID).
		Msg("conceded lock to a concurrent writer")
	return false, live[0], nil
}

// ReleaseLock deletes the lock record unconditionally.
func (s *Store) ReleaseLock(ctx context.Context, lock models.LockRecord) error {
	err := s.write(ctx, func(ctx context.Context) error {
		return s.attrs.DeleteItem(ctx, s.opts.LockDomain, lock.ID)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "Store.ReleaseLock").Str("lock_id", lock.ID).Msg("failed to release lock")
		return fmt.Errorf("error releasing lock %s: %w", lock.ID, err)
	}
	return nil
}

// Locks returns the live lock records of objectID in insertion order.
func (s *Store) Locks(ctx context.Context, objectID string) ([]models.LockRecord, error) {
	return s.liveLocks(ctx, objectID+lockInfix)
}

func (s *Store) liveLocks(ctx context.Context, prefix string) ([]models.LockRecord, error) {
	items, err := s.attrs.SelectByPrefix(ctx, s.opts.LockDomain, prefix)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "Store.liveLocks").Str("prefix", prefix).Msg("failed to query locks")
		return nil, fmt.Errorf("error querying locks: %w", s.unavailable(err))
	}

	now := s.clock.Now()
	live := make([]models.LockRecord, 0, len(items))
	for _, item := range items {
		rec := lockRecord(item)
		if rec.Expired(now, s.opts.LockTimeout) {
			continue
		}
		live = append(live, rec)
	}
	return live, nil
}

// lockRecord decodes an item of the lock domain. A record with an
// unreadable timestamp is treated as infinitely old.
func lockRecord(item models.Item) models.LockRecord {
	acquiredAt, err := time.Parse(time.RFC3339Nano, item.Attributes[attrAcquiredAt])
	if err != nil {
		acquiredAt = time.Time{}
	}
	return models.LockRecord{
		ID:         item.Name,
		ObjectID:   item.Attributes[attrLockName],
		Holder:     item.Attributes[attrHolder],
		AcquiredAt: acquiredAt,
		Seq:        item.Seq,
	}
}

// Record returns the version record of objectID. A new object yields an
// empty record.
func (s *Store) Record(ctx context.Context, objectID string) (models.ObjectVersionRecord, error) {
	attrs, err := s.attrs.GetAttributes(ctx, s.opts.DataDomain, objectID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "Store.Record").Str("object_id", objectID).Msg("failed to read object")
		return models.ObjectVersionRecord{}, fmt.Errorf("error reading object %s: %w", objectID, s.unavailable(err))
	}
	return models.NewObjectVersionRecord(objectID, attrs), nil
}

// Head returns the current version of objectID, or "" for a new object.
func (s *Store) Head(ctx context.Context, objectID string) (string, error) {
	record, err := s.Record(ctx, objectID)
	if err != nil {
		return "", err
	}

	head, err := Head(record.Versions)
	if err != nil {
		return "", fmt.Errorf("object %s: %w", objectID, err)
	}
	return head, nil
}

// UpdateObject appends newHash to the chain of objectID if previous is the
// current head, and returns [ErrVersionConflict] otherwise. The head check
// and the append run as one atomic step of the attribute store.
func (s *Store) UpdateObject(ctx context.Context, objectID, newHash, previous string) error {
	log := logger.FromContext(ctx)

	if err := validateHash(newHash); err != nil {
		return err
	}

	err := s.write(ctx, func(ctx context.Context) error {
		return s.attrs.ModifyAttributes(ctx, s.opts.DataDomain, objectID, func(current map[string]string) (map[string]string, error) {
			record := models.NewObjectVersionRecord(objectID, current)
			head, err := Head(record.Versions)
			if err != nil {
				return nil, fmt.Errorf("object %s: %w", objectID, err)
			}
			if head != previous {
				return nil, fmt.Errorf("%w: object %s head is %q, declared %q", ErrVersionConflict, objectID, head, previous)
			}
			if _, exists := record.Versions[newHash]; exists {
				return nil, fmt.Errorf("%w: object %s already has version %q", ErrVersionConflict, objectID, newHash)
			}
			return map[string]string{newHash: previous}, nil
		})
	})
	switch {
	case errors.Is(err, ErrVersionConflict):
		log.Warn().
			Err(err).
			Str("object_id", objectID).
			Str("declared", previous).
			Msg("stale predecessor")
		return err
	case errors.Is(err, ErrBrokenChain):
		return err
	case err != nil:
		log.Err(err).Str("func", "Store.UpdateObject").Str("object_id", objectID).Msg("failed to commit version")
		return fmt.Errorf("error committing version of %s: %w", objectID, err)
	}

	log.Debug().Str("object_id", objectID).Str("version", newHash).Str("previous", previous).Msg("version committed")
	return nil
}

// SetPath records the path hash of objectID. Setting the same value again
// is a no-op; a different value yields [ErrPathAlreadySet].
func (s *Store) SetPath(ctx context.Context, objectID, pathHash string) error {
	if pathHash == "" {
		return fmt.Errorf("%w: empty path hash", ErrInvalidHash)
	}

	err := s.write(ctx, func(ctx context.Context) error {
		return s.attrs.ModifyAttributes(ctx, s.opts.DataDomain, objectID, func(current map[string]string) (map[string]string, error) {
			switch current[models.PathAttribute] {
			case pathHash:
				return nil, nil
			case "":
				return map[string]string{models.PathAttribute: pathHash}, nil
			default:
				return nil, fmt.Errorf("%w: object %s", ErrPathAlreadySet, objectID)
			}
		})
	})
	if err != nil && !errors.Is(err, ErrPathAlreadySet) {
		logger.FromContext(ctx).Err(err).Str("func", "Store.SetPath").Str("object_id", objectID).Msg("failed to set path")
		return fmt.Errorf("error setting path of %s: %w", objectID, err)
	}
	return err
}

// write runs fn, retrying failures marked [store.ErrTransient] up to
// WriteRetries times with a jittered delay. Exhausting the budget yields
// [ErrDomainUnavailable].
func (s *Store) write(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.NewConstant(s.opts.RetryDelay)
	backoff = retry.WithJitter(s.opts.RetryDelay/2+time.Nanosecond, backoff)
	backoff = retry.WithMaxRetries(uint64(s.opts.WriteRetries), backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if errors.Is(err, store.ErrTransient) {
			s.logger.Warn().Err(err).Int("attempt", attempt).Msg("transient metadata write failure")
			return retry.RetryableError(err)
		}
		return err
	})
	return s.unavailable(err)
}

func (s *Store) unavailable(err error) error {
	if errors.Is(err, store.ErrTransient) {
		return fmt.Errorf("%w: %w", ErrDomainUnavailable, err)
	}
	return err
}
