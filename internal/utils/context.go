// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// ShepherdIDCtxKey is the key used to store the id of the shepherd handling
// the current queue entry.
var ShepherdIDCtxKey = contextKey("shepherdID")

// EntryIDCtxKey is the key used to store the queue entry id being processed.
var EntryIDCtxKey = contextKey("entryID")

// WithShepherdID returns a copy of ctx carrying the shepherd id.
func WithShepherdID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ShepherdIDCtxKey, id)
}

// GetShepherdIDFromContext retrieves the shepherd id from the context.
//
// Returns the id and an ok flag:
//   - ok == true: value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetShepherdIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ShepherdIDCtxKey).(string)
	return id, ok
}

// WithEntryID returns a copy of ctx carrying the queue entry id.
func WithEntryID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, EntryIDCtxKey, id)
}

// GetEntryIDFromContext retrieves the queue entry id from the context.
func GetEntryIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(EntryIDCtxKey).(int64)
	return id, ok
}
