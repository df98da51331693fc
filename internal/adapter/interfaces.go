// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the LivyFlow API.
//
// The synchronizer depends on [RemoteMutator] only; the connectivity probe
// depends on [HealthChecker]. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteAdapter]) built on resty.
//
// Every error returned by a remote call wraps [ErrRemoteCallFailed]. Status
// codes are additionally mapped by mapHTTPError so that callers can match
// specific conditions with [errors.Is] (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteMutator pushes record mutations to the server. The idempotency key
// stored in ctx by utils.WithIdempotencyKey, if any, is sent with the call.
type RemoteMutator interface {
	// CreateRemote creates a record in collection and returns the identity
	// the server assigned to it.
	CreateRemote(ctx context.Context, collection string, data json.RawMessage) (string, error)

	// UpdateRemote replaces the server record id in collection with data
	// and returns the identity the server holds it under.
	UpdateRemote(ctx context.Context, collection, id string, data json.RawMessage) (string, error)

	// DeleteRemote deletes the server record id from collection. Deleting a
	// record the server no longer has is not an error.
	DeleteRemote(ctx context.Context, collection, id string) error
}

// HealthChecker probes whether the API is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RemoteAdapter is the full client-side view of the API.
type RemoteAdapter interface {
	RemoteMutator
	HealthChecker

	// SetToken stores the identity bearer token attached to all subsequent
	// requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter.
	Token() string
}
