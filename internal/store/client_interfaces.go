// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/livyflow/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// RecordRepository persists domain records of the declared collections.
type RecordRepository interface {
	// Insert stores a new record, initializing the store on demand. It
	// assigns ID and CreatedAt and clears Synced.
	Insert(ctx context.Context, collection string, record models.Record) (int64, error)
	// Put upserts a record by ID, sets UpdatedAt and clears Synced. The
	// store must already be initialized.
	Put(ctx context.Context, collection string, record models.Record) error
	// Get returns the record with id. Absence is reported by ok == false.
	Get(ctx context.Context, collection string, id int64) (models.Record, bool, error)
	// Query returns the records of collection ordered by ID, restricted to
	// those matching every filter.
	Query(ctx context.Context, collection string, filters ...IndexFilter) ([]models.Record, error)
	// MarkSynced records that the server holds the record under serverID.
	// The record becomes synced only if its version still equals version;
	// otherwise serverID is adopted and the record stays unsynced. The
	// returned flag reports which of the two happened.
	MarkSynced(ctx context.Context, collection string, id, version int64, serverID string, at time.Time) (bool, error)
	Remove(ctx context.Context, collection string, id int64) error
	Clear(ctx context.Context, collection string) error
}

// PendingActionRepository is the FIFO queue of mutation intents.
type PendingActionRepository interface {
	Enqueue(ctx context.Context, actionType models.ActionType, data json.RawMessage) (models.PendingAction, error)
	// ListAll returns every queued action in insertion order.
	ListAll(ctx context.Context) ([]models.PendingAction, error)
	Remove(ctx context.Context, id int64) error
	// RecordFailure persists one more failed attempt and returns the
	// updated action.
	RecordFailure(ctx context.Context, action models.PendingAction) (models.PendingAction, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

// CacheRepository memoizes remote responses with an expiry.
type CacheRepository interface {
	CacheResponse(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error
	// GetCachedResponse returns the data for key while it is fresh. An
	// expired entry is deleted and reported as absent.
	GetCachedResponse(ctx context.Context, key string) (json.RawMessage, bool, error)
	Evict(ctx context.Context, key string) error
	// PurgeExpired deletes every expired entry and returns how many were
	// deleted.
	PurgeExpired(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

// Transactor runs a function over repositories bound to one transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error
}

// Initializer prepares the store for use.
type Initializer interface {
	Initialize(ctx context.Context) error
}
