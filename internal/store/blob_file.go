package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/spf13/afero"
)

// ErrInvalidBlobKey is returned for keys that are not a single path element.
var ErrInvalidBlobKey = errors.New("invalid blob key")

// fileBlobStore stores each blob as a file named by its key under dir.
// Writes go to a temporary file first and are renamed into place.
type fileBlobStore struct {
	fs     afero.Fs
	dir    string
	logger *logger.Logger
}

// NewFileBlobStore returns a [BlobStore] rooted at dir on fs. The directory
// is created if needed.
func NewFileBlobStore(fs afero.Fs, dir string, logger *logger.Logger) (BlobStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating blob dir: %w", err)
	}
	logger.Debug().Str("dir", dir).Msg("creating file blob store")

	return &fileBlobStore{fs: fs, dir: dir, logger: logger}, nil
}

func (f *fileBlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	log := logger.FromContext(ctx)

	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(f.fs, f.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("error creating temp blob: %w", err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = f.fs.Rename(tmpName, path)
	}
	if err != nil {
		_ = f.fs.Remove(tmpName)
		log.Err(err).Str("func", "fileBlobStore.Put").Str("key", key).Msg("failed to write blob")
		return fmt.Errorf("error writing blob %s: %w", key, err)
	}

	return nil
}

func (f *fileBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	file, err := f.fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error opening blob %s: %w", key, err)
	}
	return file, nil
}

func (f *fileBlobStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobKey, key)
	}
	return filepath.Join(f.dir, key), nil
}
