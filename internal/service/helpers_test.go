// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/mock"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/models"
)

// newTestStorages поднимает SQLite во временной директории
func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "offline.db")}}
	s := store.NewClientStorages(cfg, logger.Nop())
	require.NoError(t, s.DB.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.DB.Close() })
	return s
}

type syncFixture struct {
	storages *store.ClientStorages
	remote   *mock.MockRemoteMutator
	svc      *clientSyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	storages := newTestStorages(t)
	remote := mock.NewMockRemoteMutator(ctrl)

	return &syncFixture{
		storages: storages,
		remote:   remote,
		svc:      newClientSyncService(storages.Records, storages.PendingActions, storages.DB, remote, logger.Nop()),
	}
}

// insertWithAction кладёт запись и ставит в очередь действие для неё
func (f *syncFixture) insertWithAction(t *testing.T, collection string, actionType models.ActionType, data string) (int64, models.PendingAction) {
	t.Helper()
	ctx := context.Background()

	id, err := f.storages.Records.Insert(ctx, collection, models.Record{Data: json.RawMessage(data)})
	require.NoError(t, err)

	payload, err := json.Marshal(models.RecordActionPayload{LocalID: id, Collection: collection, Record: json.RawMessage(data)})
	require.NoError(t, err)

	action, err := f.storages.PendingActions.Enqueue(ctx, actionType, payload)
	require.NoError(t, err)

	return id, action
}

func (f *syncFixture) queueLen(t *testing.T) int64 {
	t.Helper()
	n, err := f.storages.PendingActions.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (f *syncFixture) record(t *testing.T, collection string, id int64) models.Record {
	t.Helper()
	rec, ok, err := f.storages.Records.Get(context.Background(), collection, id)
	require.NoError(t, err)
	require.True(t, ok)
	return rec
}

func descriptionOf(data json.RawMessage) string {
	var v struct {
		Description string `json:"description"`
	}
	_ = json.Unmarshal(data, &v)
	return v.Description
}
