// Package workers runs the long-lived components of the daemon under one
// context.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks for the duration of the work and returns when ctx is done or the
// worker fails.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Func adapts a function to [Worker].
type Func func(ctx context.Context) error

func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}
