// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Defaults applied to the client view when a source leaves them unset.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultHealthInterval = 30 * time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// AuthToken is the identity bearer token used for remote calls.
	AuthToken string
	// LogPath is the log file path; empty means next to the executable.
	LogPath string
}

// ClientAdapter holds network settings used by the remote adapter.
type ClientAdapter struct {
	// HTTPAddress is the API endpoint address.
	HTTPAddress string
	// RequestTimeout is the timeout of a single remote call.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the sync job runs while online.
	SyncInterval time.Duration
	// HealthInterval defines how often connectivity is probed.
	HealthInterval time.Duration
}

// ClientCache contains response cache policy.
type ClientCache struct {
	// TTL is the default cache entry lifetime.
	TTL time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Cache   ClientCache
}

// GetClientConfig builds and validates the client config view from the merged
// structured configuration. args are the command-line arguments without the
// program name.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)

	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps a [StructuredConfig] onto the client view and applies
// defaults to unset intervals and timeouts.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			AuthToken: cfg.App.AuthToken,
			LogPath:   cfg.App.LogPath,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: orDefault(cfg.Adapter.RequestTimeout, DefaultRequestTimeout),
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:   orDefault(cfg.Workers.SyncInterval, DefaultSyncInterval),
			HealthInterval: orDefault(cfg.Workers.HealthInterval, DefaultHealthInterval),
		},
		Cache: ClientCache{TTL: orDefault(cfg.Cache.TTL, DefaultCacheTTL)},
	}
}

func orDefault(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
