package crypto

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
)

// ParseIdentities parses age X25519 secret keys (AGE-SECRET-KEY-1...).
func ParseIdentities(keys []string) ([]age.Identity, error) {
	identities := make([]age.Identity, 0, len(keys))
	for _, key := range keys {
		identity, err := age.ParseX25519Identity(key)
		if err != nil {
			return nil, fmt.Errorf("parsing identity: %w", err)
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

// Decrypt returns the cleartext of a content blob.
func Decrypt(r io.Reader, identities ...age.Identity) (io.ReadCloser, error) {
	opened, err := age.Decrypt(r, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}

	decoder, err := zstd.NewReader(opened, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return decoder.IOReadCloser(), nil
}

// DecryptPath returns the relative path sealed in a path blob.
func DecryptPath(blob []byte, identities ...age.Identity) (string, error) {
	opened, err := age.Decrypt(bytes.NewReader(blob), identities...)
	if err != nil {
		return "", fmt.Errorf("decrypting path: %w", err)
	}

	path, err := io.ReadAll(opened)
	if err != nil {
		return "", fmt.Errorf("reading path: %w", err)
	}
	return string(path), nil
}
