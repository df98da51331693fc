// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/livyflow/models"
)

func txRecord(t *testing.T, date, account, category string) models.Record {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"date":       date,
		"account_id": account,
		"category":   category,
	})
	require.NoError(t, err)
	return models.Record{Data: data}
}

func TestRecordRepository_InsertInitializesOnDemand(t *testing.T) {
	s := newTestStorages(t, false)
	ctx := context.Background()

	id, err := s.Records.Insert(ctx, CollectionTransactions, txRecord(t, "2025-01-01", "acc-1", "food"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, s.DB.Initialized())

	rec, ok, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, rec.ID)
	assert.False(t, rec.Synced)
	assert.Nil(t, rec.ServerID)
	assert.Nil(t, rec.UpdatedAt)
	assert.Nil(t, rec.SyncedAt)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.JSONEq(t, `{"date":"2025-01-01","account_id":"acc-1","category":"food"}`, string(rec.Data))
}

func TestRecordRepository_InsertIgnoresCallerSyncFlag(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	id, err := s.Records.Insert(ctx, CollectionBudgets, models.Record{Synced: true, Data: []byte(`{"category":"rent"}`)})
	require.NoError(t, err)

	rec, _, err := s.Records.Get(ctx, CollectionBudgets, id)
	require.NoError(t, err)
	assert.False(t, rec.Synced)
}

func TestRecordRepository_PutRequiresInitialize(t *testing.T) {
	s := newTestStorages(t, false)

	err := s.Records.Put(context.Background(), CollectionTransactions, models.Record{ID: 1})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRecordRepository_PutRequiresID(t *testing.T) {
	s := newTestStorages(t, true)

	err := s.Records.Put(context.Background(), CollectionTransactions, models.Record{})
	assert.ErrorIs(t, err, ErrRecordIDRequired)
}

func TestRecordRepository_PutUpdatesAndClearsSynced(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	id, err := s.Records.Insert(ctx, CollectionTransactions, txRecord(t, "2025-01-01", "acc-1", "food"))
	require.NoError(t, err)
	_, err = s.Records.MarkSynced(ctx, CollectionTransactions, id, 0, "srv-9", time.Now())
	require.NoError(t, err)

	rec, _, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)
	require.True(t, rec.Synced)

	rec.Data = []byte(`{"date":"2025-01-02","account_id":"acc-1","category":"travel"}`)
	rec.ServerID = nil
	require.NoError(t, s.Records.Put(ctx, CollectionTransactions, rec))

	got, ok, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.Synced)
	require.NotNil(t, got.UpdatedAt)
	require.NotNil(t, got.ServerID, "server identity must survive a local edit")
	assert.Equal(t, "srv-9", *got.ServerID)
	assert.Equal(t, rec.Version+1, got.Version)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.JSONEq(t, string(rec.Data), string(got.Data))
}

func TestRecordRepository_PutInsertsMissingID(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	require.NoError(t, s.Records.Put(ctx, CollectionAccounts, models.Record{ID: 42, Data: []byte(`{"name":"Savings"}`)}))

	rec, ok, err := s.Records.Get(ctx, CollectionAccounts, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestRecordRepository_GetAbsent(t *testing.T) {
	s := newTestStorages(t, true)

	_, ok, err := s.Records.Get(context.Background(), CollectionTransactions, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordRepository_UnknownCollection(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	_, err := s.Records.Insert(ctx, "users", models.Record{})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, _, err = s.Records.Get(ctx, "users", 1)
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = s.Records.Query(ctx, "users")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	assert.ErrorIs(t, s.Records.Clear(ctx, "users"), ErrUnknownCollection)
}

func TestRecordRepository_QueryByIndex(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	fixtures := []models.Record{
		txRecord(t, "2025-01-01", "acc-1", "food"),
		txRecord(t, "2025-01-01", "acc-2", "rent"),
		txRecord(t, "2025-01-02", "acc-1", "food"),
	}
	var ids []int64
	for _, f := range fixtures {
		id, err := s.Records.Insert(ctx, CollectionTransactions, f)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := s.Records.MarkSynced(ctx, CollectionTransactions, ids[1], 0, "srv-2", time.Now())
	require.NoError(t, err)

	all, err := s.Records.Query(ctx, CollectionTransactions)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids, []int64{all[0].ID, all[1].ID, all[2].ID})

	byDate, err := s.Records.Query(ctx, CollectionTransactions, Where(IndexDate, "2025-01-01"))
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byAccountAndCategory, err := s.Records.Query(ctx, CollectionTransactions,
		Where(IndexAccountID, "acc-1"), Where(IndexCategory, "food"))
	require.NoError(t, err)
	assert.Len(t, byAccountAndCategory, 2)

	unsynced, err := s.Records.Query(ctx, CollectionTransactions, Where(IndexSynced, false))
	require.NoError(t, err)
	require.Len(t, unsynced, 2)
	assert.Equal(t, ids[0], unsynced[0].ID)
	assert.Equal(t, ids[2], unsynced[1].ID)

	byServer, err := s.Records.Query(ctx, CollectionTransactions, Where(IndexServerID, "srv-2"))
	require.NoError(t, err)
	require.Len(t, byServer, 1)
	assert.Equal(t, ids[1], byServer[0].ID)
}

func TestRecordRepository_QueryBudgetsByMonth(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	for _, m := range []string{"2025-01", "2025-02", "2025-01"} {
		_, err := s.Records.Insert(ctx, CollectionBudgets, models.Record{Data: []byte(`{"category":"food","month":"` + m + `"}`)})
		require.NoError(t, err)
	}

	got, err := s.Records.Query(ctx, CollectionBudgets, Where(IndexMonth, "2025-01"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecordRepository_QueryUnknownIndex(t *testing.T) {
	s := newTestStorages(t, true)

	_, err := s.Records.Query(context.Background(), CollectionAccounts, Where(IndexDate, "2025-01-01"))
	assert.ErrorIs(t, err, ErrUnknownIndex)

	_, err = s.Records.Query(context.Background(), CollectionBudgets, Where("amount", 10))
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestRecordRepository_MarkSynced(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	id, err := s.Records.Insert(ctx, CollectionTransactions, txRecord(t, "2025-01-01", "acc-1", "food"))
	require.NoError(t, err)
	before, _, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	synced, err := s.Records.MarkSynced(ctx, CollectionTransactions, id, before.Version, "srv-1", at)
	require.NoError(t, err)
	assert.True(t, synced)

	rec, _, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)
	assert.True(t, rec.Synced)
	require.NotNil(t, rec.ServerID)
	assert.Equal(t, "srv-1", *rec.ServerID)
	require.NotNil(t, rec.SyncedAt)
	assert.True(t, at.Equal(*rec.SyncedAt))
	assert.Nil(t, rec.UpdatedAt)
	assert.JSONEq(t, string(before.Data), string(rec.Data))
}

func TestRecordRepository_MarkSyncedMissing(t *testing.T) {
	s := newTestStorages(t, true)

	_, err := s.Records.MarkSynced(context.Background(), CollectionTransactions, 77, 0, "srv-1", time.Now())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRepository_MarkSyncedStaleVersion(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	id, err := s.Records.Insert(ctx, CollectionTransactions, txRecord(t, "2025-01-01", "acc-1", "food"))
	require.NoError(t, err)
	pushed, _, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)

	// пока запрос летел на сервер, запись изменили локально
	edited := pushed
	edited.Data = []byte(`{"date":"2025-01-01","account_id":"acc-1","category":"travel"}`)
	require.NoError(t, s.Records.Put(ctx, CollectionTransactions, edited))

	synced, err := s.Records.MarkSynced(ctx, CollectionTransactions, id, pushed.Version, "srv-1", time.Now())
	require.NoError(t, err)
	assert.False(t, synced)

	rec, _, err := s.Records.Get(ctx, CollectionTransactions, id)
	require.NoError(t, err)
	assert.False(t, rec.Synced)
	assert.Nil(t, rec.SyncedAt)
	require.NotNil(t, rec.ServerID)
	assert.Equal(t, "srv-1", *rec.ServerID)
	assert.JSONEq(t, string(edited.Data), string(rec.Data))

	synced, err = s.Records.MarkSynced(ctx, CollectionTransactions, id, rec.Version, "srv-1", time.Now())
	require.NoError(t, err)
	assert.True(t, synced)
}

func TestRecordRepository_RemoveAndClear(t *testing.T) {
	s := newTestStorages(t, true)
	ctx := context.Background()

	id1, err := s.Records.Insert(ctx, CollectionAccounts, models.Record{})
	require.NoError(t, err)
	_, err = s.Records.Insert(ctx, CollectionAccounts, models.Record{})
	require.NoError(t, err)

	require.NoError(t, s.Records.Remove(ctx, CollectionAccounts, id1))
	_, ok, err := s.Records.Get(ctx, CollectionAccounts, id1)
	require.NoError(t, err)
	assert.False(t, ok)

	// removing an absent record is not an error
	require.NoError(t, s.Records.Remove(ctx, CollectionAccounts, id1))

	require.NoError(t, s.Records.Clear(ctx, CollectionAccounts))
	all, err := s.Records.Query(ctx, CollectionAccounts)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordRepository_ReadsRequireInitialize(t *testing.T) {
	s := newTestStorages(t, false)
	ctx := context.Background()

	_, _, err := s.Records.Get(ctx, CollectionTransactions, 1)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = s.Records.Query(ctx, CollectionTransactions)
	assert.ErrorIs(t, err, ErrNotInitialized)
}
