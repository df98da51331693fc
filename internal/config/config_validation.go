// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval < 0 || cfg.Workers.HealthInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Cache.TTL < 0 {
		return ErrInvalidCacheConfigs
	}

	return nil
}
