package server

import "context"

// Server defines the lifecycle contract of the status API listener.
//
// Implementations block in [Server.Run] until ctx is done and then shut down
// gracefully.
type Server interface {
	// Run serves requests until ctx is done or the listener fails.
	Run(ctx context.Context) error
}
