package mediator

import "errors"

var (
	// ErrWIPMismatch is returned by Done when the path is not held by the
	// reporting shepherd.
	ErrWIPMismatch = errors.New("work-in-progress entry does not match")
	// ErrAlreadyRunning is returned by Start on a running mediator.
	ErrAlreadyRunning = errors.New("mediator is already running")
	// ErrNotRunning is returned by Stop on a mediator that was never started.
	ErrNotRunning = errors.New("mediator is not running")
	// ErrInvalidEvent is returned by Enqueue for malformed events.
	ErrInvalidEvent = errors.New("invalid change event")
	// ErrNotReplayable is returned by Replay for rows that did not fail or
	// get canceled.
	ErrNotReplayable = errors.New("entry cannot be replayed")
)
