package shepherd

import (
	"context"
	"io"

	"github.com/MKhiriev/lockbox/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/shepherd_mock.go -package=mock

// Mediator receives progress reports from a shepherd.
type Mediator interface {
	Update(ctx context.Context, entryID int64, state models.EntryState) error
	Done(ctx context.Context, srcPath, shepherdID string) error
}

// Encryptor produces ciphertexts of cleartext files.
type Encryptor interface {
	Encrypt(ctx context.Context, path string) (models.EncryptedFile, error)
	Open(file models.EncryptedFile) (io.ReadCloser, error)
	Remove(file models.EncryptedFile) error
}

// ObjectIDs maps a file path to its object id.
type ObjectIDs interface {
	ObjectID(path string) (string, error)
}

// MetadataStore is the lock table and version chain client.
type MetadataStore interface {
	AcquireLock(ctx context.Context, objectID string) (bool, models.LockRecord, error)
	ReleaseLock(ctx context.Context, lock models.LockRecord) error
	Record(ctx context.Context, objectID string) (models.ObjectVersionRecord, error)
	SetPath(ctx context.Context, objectID, pathHash string) error
	UpdateObject(ctx context.Context, objectID, newHash, previous string) error
}

// BlobStore stores content-addressed blobs.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
}
