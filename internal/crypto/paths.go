package crypto

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/lockbox/internal/utils"
)

// Relative returns path relative to root in slash form. Relative inputs are
// taken as already relative to root.
func Relative(root, path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(root, path)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrOutsideRoot, path, err)
		}
	}

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return rel, nil
}

// PathHasher derives object ids from file paths: the keyed HMAC-SHA256 of
// the slash-separated path relative to the sync root. The key keeps path
// names private from the metadata store.
type PathHasher struct {
	root   string
	hasher *utils.Hasher
}

func NewPathHasher(root, hashKey string) *PathHasher {
	return &PathHasher{root: root, hasher: utils.NewHasher(hashKey)}
}

// ObjectID returns the object id of path.
func (p *PathHasher) ObjectID(path string) (string, error) {
	rel, err := Relative(p.root, path)
	if err != nil {
		return "", err
	}
	return p.hasher.Sum(rel), nil
}
