// Package crypto is the encryption collaborator of the shepherds: it turns
// a cleartext file into a compressed, age-encrypted ciphertext addressed by
// its BLAKE3 hash, and derives object ids from paths.
package crypto

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

// Encryptor encrypts files under root to a fixed recipient set. Ciphertexts
// are written to temporary files in tempDir on the same file system.
type Encryptor struct {
	fs         afero.Fs
	root       string
	tempDir    string
	recipients []age.Recipient
	logger     *logger.Logger
}

// NewEncryptor parses the age X25519 recipient keys (age1...) and returns an
// Encryptor. An empty tempDir uses the OS temporary directory.
func NewEncryptor(fs afero.Fs, root string, recipientKeys []string, tempDir string, log *logger.Logger) (*Encryptor, error) {
	recipients, err := ParseRecipients(recipientKeys)
	if err != nil {
		return nil, err
	}

	if tempDir != "" {
		if err := fs.MkdirAll(tempDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating temp dir: %w", err)
		}
	}

	return &Encryptor{
		fs:         fs,
		root:       root,
		tempDir:    tempDir,
		recipients: recipients,
		logger:     log,
	}, nil
}

// ParseRecipients parses age X25519 public keys.
func ParseRecipients(keys []string) ([]age.Recipient, error) {
	if len(keys) == 0 {
		return nil, ErrNoRecipients
	}

	recipients := make([]age.Recipient, 0, len(keys))
	for _, key := range keys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// Encrypt compresses and encrypts the file at path and encrypts its path
// relative to root. The caller owns the returned ciphertext file and must
// release it with [Encryptor.Remove].
func (e *Encryptor) Encrypt(ctx context.Context, path string) (models.EncryptedFile, error) {
	rel, err := Relative(e.root, path)
	if err != nil {
		return models.EncryptedFile{}, err
	}

	src, err := e.fs.Open(filepath.Join(e.root, filepath.FromSlash(rel)))
	if err != nil {
		return models.EncryptedFile{}, fmt.Errorf("opening %s: %w", rel, err)
	}
	defer src.Close()

	tmp, err := afero.TempFile(e.fs, e.tempDir, "lockbox-*.age")
	if err != nil {
		return models.EncryptedFile{}, fmt.Errorf("creating ciphertext file: %w", err)
	}

	hasher := blake3.New()
	err = e.seal(io.MultiWriter(tmp, hasher), &ctxReader{ctx: ctx, r: src}, true)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = e.fs.Remove(tmp.Name())
		e.logger.Err(err).Str("func", "Encryptor.Encrypt").Str("path", rel).Msg("failed to encrypt file")
		return models.EncryptedFile{}, fmt.Errorf("encrypting %s: %w", rel, err)
	}

	pathBlob, pathHash, err := e.EncryptPath(rel)
	if err != nil {
		_ = e.fs.Remove(tmp.Name())
		return models.EncryptedFile{}, err
	}

	return models.EncryptedFile{
		CiphertextPath: tmp.Name(),
		ContentHash:    hex.EncodeToString(hasher.Sum(nil)),
		PathBlob:       pathBlob,
		PathHash:       pathHash,
	}, nil
}

// EncryptPath encrypts a relative path and returns the blob with its hash.
func (e *Encryptor) EncryptPath(rel string) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := e.seal(&buf, strings.NewReader(rel), false); err != nil {
		return nil, "", fmt.Errorf("encrypting path: %w", err)
	}
	sum := blake3.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

// Open opens a ciphertext produced by [Encryptor.Encrypt].
func (e *Encryptor) Open(file models.EncryptedFile) (io.ReadCloser, error) {
	return e.fs.Open(file.CiphertextPath)
}

// Remove deletes a ciphertext produced by [Encryptor.Encrypt].
func (e *Encryptor) Remove(file models.EncryptedFile) error {
	return e.fs.Remove(file.CiphertextPath)
}

func (e *Encryptor) seal(dst io.Writer, src io.Reader, compress bool) error {
	sealer, err := age.Encrypt(dst, e.recipients...)
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}

	var w io.WriteCloser = sealer
	if compress {
		encoder, err := zstd.NewWriter(sealer, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("creating zstd encoder: %w", err)
		}
		w = encoder
	}

	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	if compress {
		if err := w.Close(); err != nil {
			return fmt.Errorf("finalizing compression: %w", err)
		}
	}
	if err := sealer.Close(); err != nil {
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	return nil
}

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
