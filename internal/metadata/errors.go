package metadata

import "errors"

var (
	// ErrVersionConflict is returned by [Store.UpdateObject] when the
	// declared predecessor is not the current head. It is an expected
	// concurrency outcome: the caller observed a stale head.
	ErrVersionConflict = errors.New("version conflict: declared predecessor is not the current head")

	// ErrDomainUnavailable is returned when the attribute store kept failing
	// beyond the bounded write retry budget.
	ErrDomainUnavailable = errors.New("metadata domain unavailable")

	// ErrPathAlreadySet is returned by [Store.SetPath] when the object
	// already records a different path hash.
	ErrPathAlreadySet = errors.New("object path is already set")

	// ErrBrokenChain is returned when an object's attributes do not form a
	// single chain rooted at the empty predecessor (a fork, a cycle or
	// unreachable versions).
	ErrBrokenChain = errors.New("object version chain is broken")

	// ErrLockVanished is returned when a freshly written lock candidate is
	// missing from the re-read of its prefix.
	ErrLockVanished = errors.New("lock candidate vanished")

	// ErrInvalidHash is returned for an empty version hash or one that
	// collides with a reserved attribute name.
	ErrInvalidHash = errors.New("invalid version hash")
)
