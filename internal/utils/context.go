// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers shared by the livyflow
// client: context keys, request fingerprints, identity-token inspection,
// UUID generation and HTTP client construction.
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

// IdempotencyKeyCtxKey is the key under which the idempotency key of the
// mutation being replayed is stored.
var IdempotencyKeyCtxKey = contextKey("idempotencyKey")

// WithIdempotencyKey returns a copy of ctx carrying key. An empty key leaves
// ctx unchanged.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, IdempotencyKeyCtxKey, key)
}

// GetIdempotencyKeyFromContext retrieves the idempotency key from ctx.
// ok is false when no non-empty key is present.
func GetIdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(IdempotencyKeyCtxKey).(string)
	return key, ok && key != ""
}
