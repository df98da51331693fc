// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/models"
)

// Completion is the local bookkeeping of a successfully executed action. It
// runs in the same transaction that removes the action from the queue.
type Completion func(ctx context.Context, tx *store.Tx) error

// ActionHandler executes the remote side of a pending action. A nil
// Completion means there is nothing to record locally.
type ActionHandler func(ctx context.Context, action models.PendingAction) (Completion, error)

// newActionHandlers returns the handler table of every supported action type.
func (s *clientSyncService) newActionHandlers() map[models.ActionType]ActionHandler {
	return map[models.ActionType]ActionHandler{
		models.ActionCreateTransaction: s.upsertHandler(store.CollectionTransactions),
		models.ActionUpdateTransaction: s.upsertHandler(store.CollectionTransactions),
		models.ActionDeleteTransaction: s.deleteHandler(store.CollectionTransactions),
		models.ActionCreateBudget:      s.upsertHandler(store.CollectionBudgets),
		models.ActionUpdateBudget:      s.upsertHandler(store.CollectionBudgets),
		models.ActionDeleteBudget:      s.deleteHandler(store.CollectionBudgets),
	}
}

func decodeRecordPayload(action models.PendingAction) (models.RecordActionPayload, error) {
	var p models.RecordActionPayload
	if err := json.Unmarshal(action.Data, &p); err != nil {
		return p, fmt.Errorf("%w: action %d: %w", ErrInvalidActionPayload, action.ID, err)
	}
	return p, nil
}

// upsertHandler pushes the local record of a create or update action. The
// server identity is resolved when the action runs, so an update queued
// before the record's create was synced targets the identity the create
// obtained. A record the server does not know yet is created.
//
// When the local record no longer exists the action is completed without a
// remote call.
func (s *clientSyncService) upsertHandler(collection string) ActionHandler {
	return func(ctx context.Context, action models.PendingAction) (Completion, error) {
		p, err := decodeRecordPayload(action)
		if err != nil {
			return nil, err
		}

		record, ok, err := s.records.Get(ctx, collection, p.LocalID)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Info().
				Str("func", "clientSyncService.upsertHandler").
				Int64("action_id", action.ID).
				Int64("local_id", p.LocalID).
				Msg("local record is gone, skipping remote call")
			return nil, nil
		}

		data := record.Data
		if len(data) == 0 {
			data = p.Record
		}

		serverID := p.ServerID
		if record.HasServerID() {
			serverID = *record.ServerID
		}

		if serverID == "" {
			serverID, err = s.remote.CreateRemote(ctx, collection, data)
		} else {
			serverID, err = s.remote.UpdateRemote(ctx, collection, serverID, data)
		}
		if err != nil {
			return nil, err
		}

		return s.markSynced(collection, p.LocalID, record.Version, serverID), nil
	}
}

// deleteHandler removes the server copy of a record deleted locally.
func (s *clientSyncService) deleteHandler(collection string) ActionHandler {
	return func(ctx context.Context, action models.PendingAction) (Completion, error) {
		p, err := decodeRecordPayload(action)
		if err != nil {
			return nil, err
		}
		if p.ServerID == "" {
			return nil, nil
		}

		return nil, s.remote.DeleteRemote(ctx, collection, p.ServerID)
	}
}

// markSynced confirms the push of the record version the handler sent.
func (s *clientSyncService) markSynced(collection string, localID, version int64, serverID string) Completion {
	return func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.Records.MarkSynced(ctx, collection, localID, version, serverID, s.now())
		if errors.Is(err, store.ErrRecordNotFound) {
			// deleted locally while the remote call was in flight
			return nil
		}
		return err
	}
}
