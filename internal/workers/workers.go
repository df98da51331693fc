// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/livyflow/internal/service"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in registration order.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

// Stop stops the workers in reverse registration order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// syncWorker runs a service.ClientSyncJob at a fixed interval.
type syncWorker struct {
	job      service.ClientSyncJob
	interval time.Duration
}

// NewSyncWorker adapts job to the Worker interface.
func NewSyncWorker(job service.ClientSyncJob, interval time.Duration) Worker {
	return &syncWorker{job: job, interval: interval}
}

func (w *syncWorker) Run(ctx context.Context) {
	w.job.Start(ctx, w.interval)
}

func (w *syncWorker) Stop() {
	w.job.Stop()
}
