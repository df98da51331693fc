// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/livyflow/internal/config"
)

type clientSyncJob struct {
	syncService ClientSyncService
	monitor     ConnectivityMonitor

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that calls
// syncService.SyncOfflineData on a ticker while monitor reports online. The
// job is idle until Start is called.
func NewClientSyncJob(syncService ClientSyncService, monitor ConnectivityMonitor) ClientSyncJob {
	return &clientSyncJob{syncService: syncService, monitor: monitor}
}

// Start implements ClientSyncJob. If interval is zero or negative it defaults
// to config.DefaultSyncInterval.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if !j.monitor.IsOnline() {
					continue
				}
				_ = j.syncService.SyncOfflineData(jobCtx)
			}
		}
	}()
}

// Stop implements ClientSyncJob.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
