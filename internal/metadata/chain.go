package metadata

import (
	"fmt"

	"github.com/MKhiriev/lockbox/models"
)

// Head returns the current version of a chain given as {new: predecessor}.
// An empty chain has the empty head. It runs in O(n) over len(versions).
func Head(versions map[string]string) (string, error) {
	successor := make(map[string]string, len(versions))
	for newHash, prev := range versions {
		if other, ok := successor[prev]; ok {
			return "", fmt.Errorf("%w: %q and %q both follow %q", ErrBrokenChain, other, newHash, prev)
		}
		successor[prev] = newHash
	}

	head := ""
	visited := 0
	for {
		next, ok := successor[head]
		if !ok {
			break
		}
		visited++
		if visited > len(versions) {
			return "", fmt.Errorf("%w: cycle through %q", ErrBrokenChain, next)
		}
		head = next
	}

	if visited != len(versions) {
		return "", fmt.Errorf("%w: %d of %d versions unreachable from the root", ErrBrokenChain, len(versions)-visited, len(versions))
	}
	return head, nil
}

// History returns the versions of a chain from oldest to newest.
func History(versions map[string]string) ([]string, error) {
	if _, err := Head(versions); err != nil {
		return nil, err
	}

	successor := make(map[string]string, len(versions))
	for newHash, prev := range versions {
		successor[prev] = newHash
	}

	history := make([]string, 0, len(versions))
	for cur, ok := successor[""]; ok; cur, ok = successor[cur] {
		history = append(history, cur)
	}
	return history, nil
}

func validateHash(hash string) error {
	if hash == "" || hash == models.PathAttribute {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return nil
}
