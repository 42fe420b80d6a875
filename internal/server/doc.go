// Package server runs the status API listener.
//
// It provides the HTTP server lifecycle: startup and graceful shutdown once
// the daemon's context is done.
package server
