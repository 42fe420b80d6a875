// Package http implements the local status API of the daemon.
//
// It exposes the durable change queue for inspection and lets an operator
// replay failed entries. Request tracing, access logging and response
// compression are handled by middleware before a request reaches the
// queue handlers.
package http
