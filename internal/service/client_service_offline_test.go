// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/connectivity"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/mock"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/internal/utils"
	"github.com/MKhiriev/livyflow/models"
)

type facadeFixture struct {
	storages *store.ClientStorages
	monitor  *connectivity.Monitor
	remote   *mock.MockRemoteMutator
	services *ClientServices
	svc      ClientOfflineService
}

func newFacadeFixture(t *testing.T, online bool) *facadeFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	storages := newTestStorages(t)
	monitor := connectivity.NewMonitor(online, logger.Nop())
	remote := mock.NewMockRemoteMutator(ctrl)
	services := NewClientServices(storages, monitor, remote, 0, logger.Nop())
	t.Cleanup(services.OfflineService.Close)

	return &facadeFixture{
		storages: storages,
		monitor:  monitor,
		remote:   remote,
		services: services,
		svc:      services.OfflineService,
	}
}

func coffee() models.Transaction {
	return models.Transaction{
		Amount:      decimal.RequireFromString("-4.50"),
		Date:        "2025-01-15",
		Description: "coffee",
		Category:    "food",
		AccountID:   "acc-1",
	}
}

func TestOfflineService_OfflineStoreQueuesCreate(t *testing.T) {
	f := newFacadeFixture(t, false)
	ctx := context.Background()

	id, err := f.svc.StoreTransaction(ctx, coffee())
	require.NoError(t, err)

	actions, err := f.svc.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionCreateTransaction, actions[0].Type)
	assert.Zero(t, actions[0].Retries)

	var payload models.RecordActionPayload
	require.NoError(t, json.Unmarshal(actions[0].Data, &payload))
	assert.Equal(t, id, payload.LocalID)
	assert.Equal(t, store.CollectionTransactions, payload.Collection)

	var stored models.Transaction
	require.NoError(t, json.Unmarshal(payload.Record, &stored))
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("-4.50")))

	unsynced, err := f.svc.GetUnsynced(ctx, store.CollectionTransactions)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, id, unsynced[0].ID)
}

func TestOfflineService_OnlineStoreDoesNotQueue(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.StoreBudget(ctx, models.Budget{Category: "food", Amount: decimal.NewFromInt(300), Month: "2025-01"})
	require.NoError(t, err)

	actions, err := f.svc.PendingActions(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)

	budgets, err := f.svc.GetBudgets(ctx, store.Where(store.IndexMonth, "2025-01"))
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "food", budgets[0].Budget.Category)
	assert.False(t, budgets[0].Synced)
}

func TestOfflineService_EndToEndOfflineCreateThenReconnect(t *testing.T) {
	f := newFacadeFixture(t, false)
	ctx := context.Background()

	id, err := f.svc.StoreTransaction(ctx, coffee())
	require.NoError(t, err)

	f.remote.EXPECT().
		CreateRemote(gomock.Any(), store.CollectionTransactions, gomock.Any()).
		Return("srv-1", nil).
		Times(1)

	f.monitor.HandleOnline()
	f.services.SyncService.Wait()

	got, ok, err := f.svc.GetTransaction(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.ServerID)
	assert.Equal(t, "srv-1", *got.ServerID)
	assert.True(t, got.Synced)
	assert.Equal(t, "coffee", got.Transaction.Description)

	actions, err := f.svc.PendingActions(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestOfflineService_UpdateOfflineQueuesUpdateWithServerID(t *testing.T) {
	f := newFacadeFixture(t, false)
	ctx := context.Background()

	id, err := f.storages.Records.Insert(ctx, store.CollectionBudgets, models.Record{Data: json.RawMessage(`{"category":"food"}`)})
	require.NoError(t, err)
	_, err = f.storages.Records.MarkSynced(ctx, store.CollectionBudgets, id, 0, "srv-9", time.Now())
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateBudget(ctx, id, models.Budget{Category: "food", Amount: decimal.NewFromInt(450)}))

	actions, err := f.svc.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionUpdateBudget, actions[0].Type)

	var payload models.RecordActionPayload
	require.NoError(t, json.Unmarshal(actions[0].Data, &payload))
	assert.Equal(t, "srv-9", payload.ServerID)

	budgets, err := f.svc.GetBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.False(t, budgets[0].Synced)
	assert.True(t, budgets[0].Budget.Amount.Equal(decimal.NewFromInt(450)))
}

func TestOfflineService_UpdateMissingRecord(t *testing.T) {
	f := newFacadeFixture(t, true)

	err := f.svc.UpdateTransaction(context.Background(), 404, coffee())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestOfflineService_UpdateOnlineDoesNotQueue(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	id, err := f.svc.StoreTransaction(ctx, coffee())
	require.NoError(t, err)

	changed := coffee()
	changed.Description = "espresso"
	require.NoError(t, f.svc.UpdateTransaction(ctx, id, changed))

	got, _, err := f.svc.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "espresso", got.Transaction.Description)
	require.NotNil(t, got.UpdatedAt)

	actions, err := f.svc.PendingActions(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestOfflineService_Delete(t *testing.T) {
	ctx := context.Background()

	synced := func(t *testing.T, f *facadeFixture) int64 {
		id, err := f.svc.StoreTransaction(ctx, coffee())
		require.NoError(t, err)
		require.NoError(t, f.storages.PendingActions.Clear(ctx))
		_, err = f.storages.Records.MarkSynced(ctx, store.CollectionTransactions, id, 0, "srv-3", time.Now())
		require.NoError(t, err)
		return id
	}

	t.Run("offline with server id queues delete", func(t *testing.T) {
		f := newFacadeFixture(t, false)
		id := synced(t, f)

		require.NoError(t, f.svc.DeleteTransaction(ctx, id))

		_, ok, err := f.svc.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)

		actions, err := f.svc.PendingActions(ctx)
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, models.ActionDeleteTransaction, actions[0].Type)
	})

	t.Run("online deletes remotely", func(t *testing.T) {
		f := newFacadeFixture(t, true)
		id := synced(t, f)
		f.remote.EXPECT().DeleteRemote(gomock.Any(), store.CollectionTransactions, "srv-3").Return(nil)

		require.NoError(t, f.svc.DeleteTransaction(ctx, id))

		actions, err := f.svc.PendingActions(ctx)
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("online remote failure queues delete", func(t *testing.T) {
		f := newFacadeFixture(t, true)
		id := synced(t, f)
		f.remote.EXPECT().DeleteRemote(gomock.Any(), store.CollectionTransactions, "srv-3").Return(errNetwork)

		require.NoError(t, f.svc.DeleteTransaction(ctx, id))

		actions, err := f.svc.PendingActions(ctx)
		require.NoError(t, err)
		require.Len(t, actions, 1)
	})

	t.Run("never synced record is only removed locally", func(t *testing.T) {
		f := newFacadeFixture(t, true)
		id, err := f.svc.StoreBudget(ctx, models.Budget{Category: "rent"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteBudget(ctx, id))

		actions, err := f.svc.PendingActions(ctx)
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("missing record is a no-op", func(t *testing.T) {
		f := newFacadeFixture(t, false)
		assert.NoError(t, f.svc.DeleteTransaction(ctx, 12345))
	})
}

func TestOfflineService_QueriesDecodePayloads(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.StoreTransaction(ctx, coffee())
	require.NoError(t, err)
	rent := models.Transaction{Amount: decimal.NewFromInt(-900), Date: "2025-01-01", Category: "rent", AccountID: "acc-2"}
	_, err = f.svc.StoreTransaction(ctx, rent)
	require.NoError(t, err)
	_, err = f.svc.StoreAccount(ctx, models.Account{Name: "Checking", Balance: decimal.NewFromInt(1200)})
	require.NoError(t, err)

	food, err := f.svc.GetTransactions(ctx, store.Where(store.IndexCategory, "food"))
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "coffee", food[0].Transaction.Description)

	all, err := f.svc.GetTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accounts, err := f.svc.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Account.Name)

	_, err = f.svc.GetTransactions(ctx, store.Where(store.IndexMonth, "2025-01"))
	assert.ErrorIs(t, err, store.ErrUnknownIndex)
}

func TestOfflineService_Cache(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.CacheResponse(ctx, "accounts", json.RawMessage(`[{"id":1}]`)))
	data, ok, err := f.svc.GetCachedResponse(ctx, "accounts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	require.NoError(t, f.svc.CacheResponseFor(ctx, "budgets", json.RawMessage(`[]`), 0))
	_, ok, err = f.svc.GetCachedResponse(ctx, "budgets")
	require.NoError(t, err)
	assert.False(t, ok, "zero TTL is expired at once")
}

func TestOfflineService_CacheReadUsesFingerprint(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	params := map[string]string{"month": "2025-01", "category": "food"}
	require.NoError(t, f.svc.CacheRead(ctx, "GET", "/api/v1/transactions", params, json.RawMessage(`[1]`)))

	// порядок параметров и регистр метода не влияют на ключ
	data, ok, err := f.svc.CachedRead(ctx, "get", "/api/v1/transactions", map[string]string{"category": "food", "month": "2025-01"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[1]`, string(data))

	_, ok, err = f.svc.CachedRead(ctx, "GET", "/api/v1/transactions", map[string]string{"month": "2025-02"})
	require.NoError(t, err)
	assert.False(t, ok)

	data, ok, err = f.svc.GetCachedResponse(ctx, utils.RequestFingerprint("GET", "/api/v1/transactions", params))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[1]`, string(data))
}

func TestOfflineService_OnConnectivityChange(t *testing.T) {
	f := newFacadeFixture(t, true)

	var seen []bool
	unsubscribe := f.svc.OnConnectivityChange(func(online bool) { seen = append(seen, online) })

	f.monitor.HandleOffline()
	assert.False(t, f.svc.IsOnline())

	unsubscribe()
	f.monitor.HandleOnline()
	f.services.SyncService.Wait()

	assert.Equal(t, []bool{false}, seen)
	assert.True(t, f.svc.IsOnline())
}

func TestOfflineService_SyncNow(t *testing.T) {
	f := newFacadeFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.StoreTransaction(ctx, coffee())
	require.NoError(t, err)
	f.remote.EXPECT().CreateRemote(gomock.Any(), store.CollectionTransactions, gomock.Any()).Return("srv-1", nil)

	report := f.svc.SyncNow(ctx)
	assert.Equal(t, 1, report.RecordsSynced)
}

func TestOfflineService_StoreErrorsPropagate(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	storages := store.NewClientStorages(config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(blocker, "offline.db")}}, logger.Nop())
	monitor := connectivity.NewMonitor(false, logger.Nop())
	remote := mock.NewMockRemoteMutator(gomock.NewController(t))
	svc := NewClientServices(storages, monitor, remote, time.Minute, logger.Nop()).OfflineService
	defer svc.Close()

	_, err := svc.StoreTransaction(context.Background(), coffee())
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}
