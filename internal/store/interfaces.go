package store

import (
	"context"
	"io"
	"time"

	"github.com/MKhiriev/lockbox/models"
)

// QueueRepository is the durable change queue. Rows are appended in
// [models.StatePrepare] and only their state changes afterwards.
type QueueRepository interface {
	// Enqueue appends a row for event and returns it with its assigned id.
	Enqueue(ctx context.Context, event models.ChangeEvent) (models.QueueEntry, error)
	// NextPrepared returns the oldest Prepare row whose src_path is not in
	// excluded. ok is false when no such row exists.
	NextPrepared(ctx context.Context, excluded []string) (entry models.QueueEntry, ok bool, err error)
	// UpdateState records a new state for row id.
	UpdateState(ctx context.Context, id int64, state models.EntryState) error
	// Get returns row id or [ErrEntryNotFound].
	Get(ctx context.Context, id int64) (models.QueueEntry, error)
	// List returns rows in id order, optionally filtered by state. A zero
	// limit returns every row.
	List(ctx context.Context, state models.EntryState, limit int) ([]models.QueueEntry, error)
	// ResetInFlight moves rows left in Assigned, Encrypting or Uploading
	// back to Prepare and returns how many were reset.
	ResetInFlight(ctx context.Context) (int64, error)
	// PurgeCompleted deletes Completed rows last updated before cutoff.
	PurgeCompleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// AttributeStore is a strongly consistent item/attribute store partitioned
// into domains. Every attribute is a single string value.
type AttributeStore interface {
	// GetAttributes returns all attributes of item, or an empty map when the
	// item does not exist.
	GetAttributes(ctx context.Context, domain, item string) (map[string]string, error)
	// PutAttributes upserts attrs on item, creating it if needed.
	PutAttributes(ctx context.Context, domain, item string, attrs map[string]string) error
	// ModifyAttributes reads the attributes of item, passes a copy to fn and
	// upserts the attributes fn returns, as one atomic step with respect to
	// every other write of the domain. An error from fn aborts the write and
	// is returned as is; an empty result writes nothing.
	ModifyAttributes(ctx context.Context, domain, item string, fn ModifyFunc) error
	// SelectByPrefix returns all items whose name starts with prefix,
	// ordered by insertion (ascending [models.Item.Seq]).
	SelectByPrefix(ctx context.Context, domain, prefix string) ([]models.Item, error)
	// DeleteItem removes item and all its attributes. Deleting a missing
	// item is not an error.
	DeleteItem(ctx context.Context, domain, item string) error
}

// ModifyFunc computes the attributes to upsert from the current ones.
type ModifyFunc func(current map[string]string) (map[string]string, error)

// BlobStore is a content-addressed key/value store.
type BlobStore interface {
	// Put stores the payload read from r under key. Repeating a Put with the
	// same key and payload is not an error.
	Put(ctx context.Context, key string, r io.Reader) error
	// Get opens the payload under key or returns [ErrBlobNotFound].
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ErrorClassificator decides whether a failed database operation should be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
