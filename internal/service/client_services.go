// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/livyflow/internal/adapter"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/store"
)

// ClientServices groups the client services built on one set of storages.
type ClientServices struct {
	SyncService    ClientSyncService
	SyncJob        ClientSyncJob
	OfflineService ClientOfflineService
}

func NewClientServices(
	storages *store.ClientStorages,
	monitor ConnectivityMonitor,
	remote adapter.RemoteMutator,
	cacheTTL time.Duration,
	log *logger.Logger,
) *ClientServices {
	syncSvc := NewClientSyncService(storages, remote, log.Component("sync"))

	return &ClientServices{
		SyncService:    syncSvc,
		SyncJob:        NewClientSyncJob(syncSvc, monitor),
		OfflineService: NewClientOfflineService(storages, monitor, syncSvc, remote, cacheTTL, log.Component("offline")),
	}
}
