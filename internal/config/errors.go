// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates missing API address or a negative
	// request timeout.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an empty or in-memory database path.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates negative worker intervals.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidCacheConfigs indicates a negative cache TTL.
	ErrInvalidCacheConfigs = errors.New("invalid cache configuration")
)
