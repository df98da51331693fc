// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/livyflow/internal/adapter"
	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/connectivity"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/internal/utils"
	"github.com/MKhiriev/livyflow/models"
)

type clientOfflineService struct {
	records store.RecordRepository
	actions store.PendingActionRepository
	cache   store.CacheRepository

	monitor ConnectivityMonitor
	sync    ClientSyncService
	remote  adapter.RemoteMutator

	cacheTTL   time.Duration
	listenerID connectivity.ListenerID
	logger     *logger.Logger
}

// NewClientOfflineService composes the facade and subscribes the synchronizer
// to the monitor: every offline to online transition triggers one background
// pass. A non-positive cacheTTL falls back to config.DefaultCacheTTL.
func NewClientOfflineService(
	storages *store.ClientStorages,
	monitor ConnectivityMonitor,
	syncService ClientSyncService,
	remote adapter.RemoteMutator,
	cacheTTL time.Duration,
	log *logger.Logger,
) ClientOfflineService {
	if cacheTTL <= 0 {
		cacheTTL = config.DefaultCacheTTL
	}

	s := &clientOfflineService{
		records:  storages.Records,
		actions:  storages.PendingActions,
		cache:    storages.Cache,
		monitor:  monitor,
		sync:     syncService,
		remote:   remote,
		cacheTTL: cacheTTL,
		logger:   log,
	}

	s.listenerID = monitor.AddListener(func(online bool) {
		if online {
			s.sync.Trigger(context.Background())
		}
	})

	return s
}

func (s *clientOfflineService) StoreTransaction(ctx context.Context, tx models.Transaction) (int64, error) {
	return s.storeRecord(ctx, store.CollectionTransactions, models.ActionCreateTransaction, tx)
}

func (s *clientOfflineService) StoreBudget(ctx context.Context, budget models.Budget) (int64, error) {
	return s.storeRecord(ctx, store.CollectionBudgets, models.ActionCreateBudget, budget)
}

func (s *clientOfflineService) StoreAccount(ctx context.Context, account models.Account) (int64, error) {
	return s.storeRecord(ctx, store.CollectionAccounts, "", account)
}

// storeRecord inserts v and, when offline and actionType is set, queues its
// creation.
func (s *clientOfflineService) storeRecord(ctx context.Context, collection string, actionType models.ActionType, v any) (int64, error) {
	ctx = s.logger.WithContext(ctx)

	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	id, err := s.records.Insert(ctx, collection, models.Record{Data: data})
	if err != nil {
		return 0, err
	}

	if actionType != "" && !s.monitor.IsOnline() {
		err = s.enqueue(ctx, actionType, models.RecordActionPayload{
			LocalID:    id,
			Collection: collection,
			Record:     data,
		})
		if err != nil {
			return id, err
		}
	}

	return id, nil
}

func (s *clientOfflineService) UpdateTransaction(ctx context.Context, id int64, tx models.Transaction) error {
	return s.updateRecord(ctx, store.CollectionTransactions, models.ActionUpdateTransaction, id, tx)
}

func (s *clientOfflineService) UpdateBudget(ctx context.Context, id int64, budget models.Budget) error {
	return s.updateRecord(ctx, store.CollectionBudgets, models.ActionUpdateBudget, id, budget)
}

func (s *clientOfflineService) updateRecord(ctx context.Context, collection string, actionType models.ActionType, id int64, v any) error {
	ctx = s.logger.WithContext(ctx)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	existing, ok, err := s.records.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s id=%d", store.ErrRecordNotFound, collection, id)
	}

	existing.Data = data
	if err = s.records.Put(ctx, collection, existing); err != nil {
		return err
	}

	if s.monitor.IsOnline() {
		return nil
	}

	payload := models.RecordActionPayload{LocalID: id, Collection: collection, Record: data}
	if existing.HasServerID() {
		payload.ServerID = *existing.ServerID
	}
	return s.enqueue(ctx, actionType, payload)
}

func (s *clientOfflineService) DeleteTransaction(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, store.CollectionTransactions, models.ActionDeleteTransaction, id)
}

func (s *clientOfflineService) DeleteBudget(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, store.CollectionBudgets, models.ActionDeleteBudget, id)
}

// deleteRecord removes the record locally. A record the server holds is
// deleted remotely right away when online; otherwise, or when that call
// fails, the deletion is queued.
func (s *clientOfflineService) deleteRecord(ctx context.Context, collection string, actionType models.ActionType, id int64) error {
	ctx = s.logger.WithContext(ctx)

	existing, ok, err := s.records.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err = s.records.Remove(ctx, collection, id); err != nil {
		return err
	}

	if !existing.HasServerID() {
		return nil
	}
	serverID := *existing.ServerID

	if s.monitor.IsOnline() {
		err = s.remote.DeleteRemote(ctx, collection, serverID)
		if err == nil {
			return nil
		}
		s.logger.Warn().Err(err).
			Str("func", "clientOfflineService.deleteRecord").
			Str("collection", collection).
			Str("server_id", serverID).
			Msg("remote delete failed, queueing")
	}

	return s.enqueue(ctx, actionType, models.RecordActionPayload{
		LocalID:    id,
		Collection: collection,
		ServerID:   serverID,
	})
}

func (s *clientOfflineService) enqueue(ctx context.Context, actionType models.ActionType, payload models.RecordActionPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if _, err = s.actions.Enqueue(ctx, actionType, data); err != nil {
		return err
	}

	s.logger.Debug().
		Str("func", "clientOfflineService.enqueue").
		Str("type", string(actionType)).
		Int64("local_id", payload.LocalID).
		Msg("mutation queued for sync")
	return nil
}

func (s *clientOfflineService) GetTransactions(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredTransaction, error) {
	records, err := s.records.Query(ctx, store.CollectionTransactions, filters...)
	if err != nil {
		return nil, err
	}

	out := make([]models.StoredTransaction, 0, len(records))
	for _, r := range records {
		item := models.StoredTransaction{Record: r}
		if err = r.Decode(&item.Transaction); err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", r.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *clientOfflineService) GetTransaction(ctx context.Context, id int64) (models.StoredTransaction, bool, error) {
	r, ok, err := s.records.Get(ctx, store.CollectionTransactions, id)
	if err != nil || !ok {
		return models.StoredTransaction{}, ok, err
	}

	item := models.StoredTransaction{Record: r}
	if err = r.Decode(&item.Transaction); err != nil {
		return models.StoredTransaction{}, false, fmt.Errorf("decode transaction %d: %w", r.ID, err)
	}
	return item, true, nil
}

func (s *clientOfflineService) GetBudgets(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredBudget, error) {
	records, err := s.records.Query(ctx, store.CollectionBudgets, filters...)
	if err != nil {
		return nil, err
	}

	out := make([]models.StoredBudget, 0, len(records))
	for _, r := range records {
		item := models.StoredBudget{Record: r}
		if err = r.Decode(&item.Budget); err != nil {
			return nil, fmt.Errorf("decode budget %d: %w", r.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *clientOfflineService) GetAccounts(ctx context.Context, filters ...store.IndexFilter) ([]models.StoredAccount, error) {
	records, err := s.records.Query(ctx, store.CollectionAccounts, filters...)
	if err != nil {
		return nil, err
	}

	out := make([]models.StoredAccount, 0, len(records))
	for _, r := range records {
		item := models.StoredAccount{Record: r}
		if err = r.Decode(&item.Account); err != nil {
			return nil, fmt.Errorf("decode account %d: %w", r.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *clientOfflineService) GetUnsynced(ctx context.Context, collection string) ([]models.Record, error) {
	return s.records.Query(ctx, collection, store.Where(store.IndexSynced, false))
}

func (s *clientOfflineService) PendingActions(ctx context.Context) ([]models.PendingAction, error) {
	return s.actions.ListAll(ctx)
}

func (s *clientOfflineService) CacheResponse(ctx context.Context, key string, data json.RawMessage) error {
	return s.cache.CacheResponse(ctx, key, data, s.cacheTTL)
}

func (s *clientOfflineService) CacheResponseFor(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	return s.cache.CacheResponse(ctx, key, data, ttl)
}

func (s *clientOfflineService) GetCachedResponse(ctx context.Context, key string) (json.RawMessage, bool, error) {
	return s.cache.GetCachedResponse(ctx, key)
}

func (s *clientOfflineService) CacheRead(ctx context.Context, method, path string, params map[string]string, data json.RawMessage) error {
	return s.cache.CacheResponse(ctx, utils.RequestFingerprint(method, path, params), data, s.cacheTTL)
}

func (s *clientOfflineService) CachedRead(ctx context.Context, method, path string, params map[string]string) (json.RawMessage, bool, error) {
	return s.cache.GetCachedResponse(ctx, utils.RequestFingerprint(method, path, params))
}

func (s *clientOfflineService) IsOnline() bool {
	return s.monitor.IsOnline()
}

func (s *clientOfflineService) OnConnectivityChange(fn func(online bool)) func() {
	id := s.monitor.AddListener(fn)
	return func() { s.monitor.RemoveListener(id) }
}

func (s *clientOfflineService) SyncNow(ctx context.Context) models.SyncReport {
	return s.sync.SyncOfflineData(ctx)
}

func (s *clientOfflineService) Close() {
	s.monitor.RemoveListener(s.listenerID)
	s.sync.Wait()
}
