// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging values from environment variables, command-line flags, and an
// optional config file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the identity token.
	App App `envPrefix:"APP_"`

	// Storage holds the local durable store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds settings of the remote API the client talks to.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background worker intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// Cache holds response cache policy.
	Cache Cache `envPrefix:"CACHE_"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. Populated via the CONFIG environment variable or the -c / -config
	// flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// AuthToken is the identity-provider bearer token attached to remote calls.
	// Env: APP_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`

	// LogPath is the file client logs are appended to.
	// Env: APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// Storage groups the configuration of the local durable store.
type Storage struct {
	// DB holds the SQLite settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path (e.g. "/home/user/.livyflow/offline.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Adapter holds configuration of the remote API.
type Adapter struct {
	// HTTPAddress is the API base address, "host:port" or a full URL.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration of a single remote call.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the background sync job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// HealthInterval is the period of the connectivity health probe.
	// Env: WORKERS_HEALTH_INTERVAL
	HealthInterval time.Duration `env:"HEALTH_INTERVAL"`
}

// Cache holds response cache policy.
type Cache struct {
	// TTL is the default lifetime of cached responses.
	// Env: CACHE_TTL
	TTL time.Duration `env:"TTL"`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources in the following priority order (last source wins for non-zero
// fields):
//  1. Environment variables
//  2. Command-line flags parsed from args
//  3. Config file (path resolved from sources 1 and 2)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withFile().
		build()
}
