package crypto

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/MKhiriev/lockbox/internal/logger"
)

const root = "/sync"

func newTestEncryptor(t *testing.T) (*Encryptor, afero.Fs, *age.X25519Identity) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "docs"), 0o755))

	enc, err := NewEncryptor(fs, root, []string{identity.Recipient().String()}, "/tmp/lockbox", logger.Nop())
	require.NoError(t, err)
	return enc, fs, identity
}

// ── Relative / PathHasher ────────────────────────────────────────────────────

func TestRelative(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "absolute under root", path: "/sync/docs/a.txt", want: "docs/a.txt"},
		{name: "already relative", path: "docs/a.txt", want: "docs/a.txt"},
		{name: "unclean relative", path: "docs/../b.txt", want: "b.txt"},
		{name: "root itself", path: "/sync", wantErr: true},
		{name: "outside root", path: "/etc/passwd", wantErr: true},
		{name: "escaping relative", path: "../x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Relative(root, tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutsideRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathHasher_ObjectID(t *testing.T) {
	h := NewPathHasher(root, "key")

	abs, err := h.ObjectID("/sync/docs/a.txt")
	require.NoError(t, err)
	rel, err := h.ObjectID("docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, abs, rel)
	assert.Len(t, abs, 64)

	other, err := NewPathHasher(root, "other-key").ObjectID("docs/a.txt")
	require.NoError(t, err)
	assert.NotEqual(t, abs, other)

	_, err = h.ObjectID("/elsewhere/a.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

// ── NewEncryptor ─────────────────────────────────────────────────────────────

func TestNewEncryptor_Errors(t *testing.T) {
	_, err := NewEncryptor(afero.NewMemMapFs(), root, nil, "", logger.Nop())
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = NewEncryptor(afero.NewMemMapFs(), root, []string{"not-a-key"}, "", logger.Nop())
	assert.Error(t, err)
}

// ── Encrypt ──────────────────────────────────────────────────────────────────

func TestEncryptor_Encrypt_RoundTrip(t *testing.T) {
	enc, fs, identity := newTestEncryptor(t)
	content := bytes.Repeat([]byte("lockbox "), 1024)
	require.NoError(t, afero.WriteFile(fs, "/sync/docs/a.txt", content, 0o644))

	file, err := enc.Encrypt(context.Background(), "/sync/docs/a.txt")
	require.NoError(t, err)

	ciphertext, err := afero.ReadFile(fs, file.CiphertextPath)
	require.NoError(t, err)
	sum := blake3.Sum256(ciphertext)
	assert.Equal(t, file.ContentHash, hex.EncodeToString(sum[:]))
	assert.NotContains(t, string(ciphertext), "lockbox")

	rc, err := enc.Open(file)
	require.NoError(t, err)
	plain, err := Decrypt(rc, identity)
	require.NoError(t, err)
	got, err := io.ReadAll(plain)
	require.NoError(t, err)
	require.NoError(t, plain.Close())
	require.NoError(t, rc.Close())
	assert.Equal(t, content, got)

	path, err := DecryptPath(file.PathBlob, identity)
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", path)
	pathSum := blake3.Sum256(file.PathBlob)
	assert.Equal(t, file.PathHash, hex.EncodeToString(pathSum[:]))

	require.NoError(t, enc.Remove(file))
	exists, err := afero.Exists(fs, file.CiphertextPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEncryptor_Encrypt_MissingFile(t *testing.T) {
	enc, _, _ := newTestEncryptor(t)

	_, err := enc.Encrypt(context.Background(), "docs/missing.txt")
	assert.Error(t, err)
}

func TestEncryptor_Encrypt_CanceledContext(t *testing.T) {
	enc, fs, _ := newTestEncryptor(t)
	require.NoError(t, afero.WriteFile(fs, "/sync/docs/a.txt", []byte("data"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Encrypt(ctx, "docs/a.txt")
	require.ErrorIs(t, err, context.Canceled)

	leftovers, err := afero.ReadDir(fs, "/tmp/lockbox")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDecrypt_WrongIdentity(t *testing.T) {
	enc, fs, _ := newTestEncryptor(t)
	require.NoError(t, afero.WriteFile(fs, "/sync/docs/a.txt", []byte("data"), 0o644))
	file, err := enc.Encrypt(context.Background(), "docs/a.txt")
	require.NoError(t, err)

	stranger, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	_, err = DecryptPath(file.PathBlob, stranger)
	assert.Error(t, err)
}

func TestParseIdentities(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	ids, err := ParseIdentities([]string{identity.String()})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = ParseIdentities([]string{"AGE-SECRET-KEY-garbage"})
	assert.Error(t, err)
}
