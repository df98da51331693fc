// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/livyflow/internal/adapter"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/internal/utils"
	"github.com/MKhiriev/livyflow/models"
)

type recordRef struct {
	collection string
	id         int64
}

type clientSyncService struct {
	records  store.RecordRepository
	actions  store.PendingActionRepository
	tx       store.Transactor
	remote   adapter.RemoteMutator
	logger   *logger.Logger
	now      func() time.Time
	handlers map[models.ActionType]ActionHandler

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewClientSyncService creates the synchronizer over the local storages and
// the remote collaborator.
func NewClientSyncService(storages *store.ClientStorages, remote adapter.RemoteMutator, log *logger.Logger) ClientSyncService {
	return newClientSyncService(storages.Records, storages.PendingActions, storages.DB, remote, log)
}

func newClientSyncService(
	records store.RecordRepository,
	actions store.PendingActionRepository,
	tx store.Transactor,
	remote adapter.RemoteMutator,
	log *logger.Logger,
) *clientSyncService {
	s := &clientSyncService{
		records: records,
		actions: actions,
		tx:      tx,
		remote:  remote,
		logger:  log,
		now:     time.Now,
	}
	s.handlers = s.newActionHandlers()
	return s
}

// SyncOfflineData implements [ClientSyncService].
func (s *clientSyncService) SyncOfflineData(ctx context.Context) models.SyncReport {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug().Str("func", "clientSyncService.SyncOfflineData").Msg("sync already in progress, skipping")
		return models.SyncReport{Skipped: true}
	}
	defer s.running.Store(false)

	ctx = s.logger.WithContext(ctx)
	report := models.SyncReport{StartedAt: s.now()}

	s.drainQueue(ctx, &report)
	s.pushUnsynced(ctx, &report)

	report.FinishedAt = s.now()
	s.logger.Info().
		Str("func", "clientSyncService.SyncOfflineData").
		Int("actions_executed", report.ActionsExecuted).
		Int("actions_failed", report.ActionsFailed).
		Int("actions_dropped", report.ActionsDropped).
		Int("records_synced", report.RecordsSynced).
		Int("records_failed", report.RecordsFailed).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("sync pass finished")

	return report
}

// Trigger implements [ClientSyncService].
func (s *clientSyncService) Trigger(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.SyncOfflineData(ctx)
	}()
}

// Wait implements [ClientSyncService].
func (s *clientSyncService) Wait() {
	s.wg.Wait()
}

// drainQueue executes the queued actions strictly in insertion order.
func (s *clientSyncService) drainQueue(ctx context.Context, report *models.SyncReport) {
	actions, err := s.actions.ListAll(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "clientSyncService.drainQueue").Msg("failed to list pending actions")
		return
	}

	for _, action := range actions {
		switch s.executeAction(ctx, action) {
		case actionExecuted:
			report.ActionsExecuted++
		case actionFailed:
			report.ActionsFailed++
		case actionDropped:
			report.ActionsDropped++
		}
	}
}

type actionOutcome int

const (
	actionExecuted actionOutcome = iota
	actionFailed
	actionDropped
)

func (s *clientSyncService) executeAction(ctx context.Context, action models.PendingAction) actionOutcome {
	log := s.logger.With().
		Str("func", "clientSyncService.executeAction").
		Int64("action_id", action.ID).
		Str("type", string(action.Type)).
		Logger()

	handler, ok := s.handlers[action.Type]
	if !ok {
		log.Warn().Err(ErrUnknownActionType).Msg("dropping action")
		if err := s.actions.Remove(ctx, action.ID); err != nil {
			log.Err(err).Msg("failed to remove unknown action")
			return actionFailed
		}
		return actionDropped
	}

	complete, err := handler(utils.WithIdempotencyKey(ctx, action.IdempotencyKey), action)
	if err != nil {
		return s.recordFailure(ctx, action, err)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		if complete != nil {
			if err := complete(ctx, tx); err != nil {
				return err
			}
		}
		return tx.PendingActions.Remove(ctx, action.ID)
	})
	if err != nil {
		// the remote side succeeded; the action is replayed with the same
		// idempotency key until the retry limit
		log.Err(err).Msg("failed to complete action locally")
		return s.recordFailure(ctx, action, err)
	}

	log.Debug().Msg("action executed")
	return actionExecuted
}

func (s *clientSyncService) recordFailure(ctx context.Context, action models.PendingAction, cause error) actionOutcome {
	log := s.logger.With().
		Str("func", "clientSyncService.recordFailure").
		Int64("action_id", action.ID).
		Str("type", string(action.Type)).
		Logger()

	updated, err := s.actions.RecordFailure(ctx, action)
	if err != nil {
		log.Err(errors.Join(cause, err)).Msg("failed to record action failure")
		return actionFailed
	}

	if updated.Exhausted() {
		log.Warn().Err(cause).Int("retries", updated.Retries).Msg("retry limit reached, dropping action")
		if err = s.actions.Remove(ctx, action.ID); err != nil {
			log.Err(err).Msg("failed to remove exhausted action")
			return actionFailed
		}
		return actionDropped
	}

	log.Warn().Err(cause).Int("retries", updated.Retries).Msg("action failed, will retry")
	return actionFailed
}

// pushUnsynced creates or updates on the server every record not yet synced.
// Records still referenced by a queued action are left to that action.
func (s *clientSyncService) pushUnsynced(ctx context.Context, report *models.SyncReport) {
	queued := s.queuedRecords(ctx)

	for _, collection := range store.SyncableCollections {
		records, err := s.records.Query(ctx, collection, store.Where(store.IndexSynced, false))
		if err != nil {
			s.logger.Err(err).
				Str("func", "clientSyncService.pushUnsynced").
				Str("collection", collection).
				Msg("failed to query unsynced records")
			continue
		}

		for _, record := range records {
			if _, ok := queued[recordRef{collection: collection, id: record.ID}]; ok {
				continue
			}

			synced, err := s.pushRecord(ctx, collection, record)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("func", "clientSyncService.pushUnsynced").
					Str("collection", collection).
					Int64("id", record.ID).
					Msg("failed to sync record")
				report.RecordsFailed++
				continue
			}
			if synced {
				report.RecordsSynced++
			}
		}
	}
}

// pushRecord sends record to the server. It reports false when the record
// was edited locally during the call and still needs another push.
func (s *clientSyncService) pushRecord(ctx context.Context, collection string, record models.Record) (bool, error) {
	var (
		serverID string
		err      error
	)
	if record.HasServerID() {
		serverID, err = s.remote.UpdateRemote(ctx, collection, *record.ServerID, record.Data)
	} else {
		serverID, err = s.remote.CreateRemote(ctx, collection, record.Data)
	}
	if err != nil {
		return false, err
	}

	return s.records.MarkSynced(ctx, collection, record.ID, record.Version, serverID, s.now())
}

// queuedRecords returns the records referenced by actions still in the queue.
func (s *clientSyncService) queuedRecords(ctx context.Context) map[recordRef]struct{} {
	refs := make(map[recordRef]struct{})

	actions, err := s.actions.ListAll(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "clientSyncService.queuedRecords").Msg("failed to list pending actions")
		return refs
	}

	for _, action := range actions {
		p, err := decodeRecordPayload(action)
		if err != nil || p.LocalID == 0 {
			continue
		}
		refs[recordRef{collection: p.Collection, id: p.LocalID}] = struct{}{}
	}

	return refs
}
