// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestShepherdIDRoundTrip(t *testing.T) {
	ctx := WithShepherdID(context.Background(), "shepherd-2")

	id, ok := GetShepherdIDFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if id != "shepherd-2" {
		t.Errorf("expected 'shepherd-2', got '%s'", id)
	}
}

func TestGetShepherdIDFromContext_Missing(t *testing.T) {
	id, ok := GetShepherdIDFromContext(context.Background())
	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if id != "" {
		t.Errorf("expected empty id, got '%s'", id)
	}
}

func TestGetShepherdIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), ShepherdIDCtxKey, 42)

	if _, ok := GetShepherdIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for wrong type")
	}
}

func TestEntryIDRoundTrip(t *testing.T) {
	ctx := WithEntryID(context.Background(), 17)

	id, ok := GetEntryIDFromContext(ctx)
	if !ok || id != 17 {
		t.Fatalf("expected (17, true), got (%d, %v)", id, ok)
	}
}

func TestGetEntryIDFromContext_DifferentKey(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("other"), int64(5))

	if _, ok := GetEntryIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for a different key")
	}
}
