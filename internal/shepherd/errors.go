package shepherd

import "errors"

var (
	// ErrNotReady is returned by Assign when the shepherd is not idle.
	ErrNotReady = errors.New("shepherd is not ready")
	// ErrLockContention is returned when another client holds the lock of
	// the object being committed.
	ErrLockContention = errors.New("object is locked by another client")
)
