// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the client's offline-first business logic: the
// synchronizer that replays queued mutations and pushes unsynced records,
// the periodic sync job, and the OfflineService facade the UI talks to.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/livyflow/internal/connectivity"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/models"
)

// ConnectivityMonitor is the part of connectivity.Monitor the services use.
type ConnectivityMonitor interface {
	IsOnline() bool
	AddListener(fn connectivity.Listener) connectivity.ListenerID
	RemoveListener(id connectivity.ListenerID)
}

// ClientSyncService reconciles local state with the server.
type ClientSyncService interface {
	// SyncOfflineData runs one synchronization pass: it drains the
	// pending-action queue in FIFO order and then pushes every unsynced
	// record. Failures are logged and counted in the report, never returned.
	// When a pass is already running it returns at once with Skipped set.
	SyncOfflineData(ctx context.Context) models.SyncReport

	// Trigger starts a pass in the background. The pass does not inherit
	// ctx's cancellation.
	Trigger(ctx context.Context)

	// Wait blocks until every triggered pass has finished.
	Wait()
}

// ClientSyncJob periodically triggers synchronization while the client is
// online.
type ClientSyncJob interface {
	// Start stops any previously running job and launches a new one that
	// syncs every interval until ctx is cancelled or Stop is called.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the job and blocks until it has exited. Safe to call when
	// the job is not running.
	Stop()
}

// ClientOfflineService is the single entry point the UI uses for persistence,
// caching, connectivity and synchronization. Store errors are returned
// unchanged; synchronization failures never surface.
type ClientOfflineService interface {
	// StoreTransaction stores a transaction locally and, when offline,
	// queues its creation on the server. It returns the local ID.
	StoreTransaction(ctx context.Context, tx models.Transaction) (int64, error)
	// StoreBudget stores a budget locally and, when offline, queues its
	// creation on the server. It returns the local ID.
	StoreBudget(ctx context.Context, budget models.Budget) (int64, error)
	// StoreAccount stores an account locally. Accounts reach the server
	// through the unsynced-record stage of synchronization.
	StoreAccount(ctx context.Context, account models.Account) (int64, error)

	UpdateTransaction(ctx context.Context, id int64, tx models.Transaction) error
	UpdateBudget(ctx context.Context, id int64, budget models.Budget) error
	DeleteTransaction(ctx context.Context, id int64) error
	DeleteBudget(ctx context.Context, id int64) error

	GetTransactions(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredTransaction, error)
	GetTransaction(ctx context.Context, id int64) (models.StoredTransaction, bool, error)
	GetBudgets(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredBudget, error)
	GetAccounts(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredAccount, error)
	// GetUnsynced returns the records of collection the server does not
	// hold yet.
	GetUnsynced(ctx context.Context, collection string) ([]models.Record, error)
	// PendingActions returns the queued mutations in execution order.
	PendingActions(ctx context.Context) ([]models.PendingAction, error)

	// CacheResponse caches data under key for the default TTL.
	CacheResponse(ctx context.Context, key string, data json.RawMessage) error
	CacheResponseFor(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error
	GetCachedResponse(ctx context.Context, key string) (json.RawMessage, bool, error)
	// CacheRead caches the response of a remote read keyed by its request
	// fingerprint; CachedRead looks it up.
	CacheRead(ctx context.Context, method, path string, params map[string]string, data json.RawMessage) error
	CachedRead(ctx context.Context, method, path string, params map[string]string) (json.RawMessage, bool, error)

	IsOnline() bool
	// OnConnectivityChange subscribes fn to connectivity transitions. The
	// returned function unsubscribes it.
	OnConnectivityChange(fn func(online bool)) (unsubscribe func())

	// SyncNow runs a synchronization pass and reports its outcome.
	SyncNow(ctx context.Context) models.SyncReport

	// Close detaches the facade from the connectivity monitor and waits for
	// triggered passes to finish.
	Close()
}
