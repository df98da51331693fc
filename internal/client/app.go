// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/livyflow/internal/adapter"
	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/connectivity"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/service"
	"github.com/MKhiriev/livyflow/internal/store"
	"github.com/MKhiriev/livyflow/internal/workers"
)

var _ Client = (*App)(nil)

// App owns every long-lived component of the client.
type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	remote   adapter.RemoteAdapter
	monitor  *connectivity.Monitor
	services *service.ClientServices
	probe    *workers.HealthProbe
	workers  *workers.Workers
	logger   *logger.Logger
}

// NewApp builds the component graph. Nothing is opened or started until Open
// or Start is called; the monitor starts offline.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("client config is nil")
	}

	remote, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, cfg.App, log.Component("adapter"))
	if err != nil {
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	storages := store.NewClientStorages(cfg.Storage, log.Component("store"))
	monitor := connectivity.NewMonitor(false, log.Component("connectivity"))
	services := service.NewClientServices(storages, monitor, remote, cfg.Cache.TTL, log)
	probe := workers.NewHealthProbe(remote, monitor, cfg.Workers.HealthInterval, log.Component("health"))

	return &App{
		cfg:      cfg,
		storages: storages,
		remote:   remote,
		monitor:  monitor,
		services: services,
		probe:    probe,
		workers: workers.NewWorkers(
			probe,
			workers.NewSyncWorker(services.SyncJob, cfg.Workers.SyncInterval),
		),
		logger: log,
	}, nil
}

// Services exposes the client services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Storages exposes the local repositories for maintenance tooling.
func (a *App) Storages() *store.ClientStorages {
	return a.storages
}

// Monitor exposes the connectivity monitor.
func (a *App) Monitor() *connectivity.Monitor {
	return a.monitor
}

// Open initializes the durable store and seeds the monitor with one health
// probe. A store failure is returned; an unreachable server only leaves the
// client offline.
func (a *App) Open(ctx context.Context) error {
	if err := a.storages.DB.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize local store: %w", err)
	}

	online := a.probe.Probe(ctx)
	a.logger.Info().Bool("online", online).Msg("client store opened")
	return nil
}

// Start opens the app and launches the background workers.
func (a *App) Start(ctx context.Context) error {
	if err := a.Open(ctx); err != nil {
		return err
	}

	a.workers.Run(ctx)
	return nil
}

// Shutdown stops the workers, waits for an in-flight sync pass and closes the
// store.
func (a *App) Shutdown() {
	a.workers.Stop()
	a.services.OfflineService.Close()

	if err := a.storages.DB.Close(); err != nil {
		a.logger.Err(err).Msg("error closing local store")
	}
	a.logger.Info().Msg("client shutdown gracefully")
}

// Run implements Client: it starts the app and blocks until a stop signal.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.Shutdown()

	return nil
}
