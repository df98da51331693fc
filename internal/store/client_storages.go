// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
)

// ClientStorages groups the local database and every repository built on it
// into a single value that can be passed around the service layer.
type ClientStorages struct {
	// DB is the lazily opened SQLite database. It also runs transactions
	// spanning records and the pending-action queue.
	DB *DB

	Records        RecordRepository
	PendingActions PendingActionRepository
	Cache          CacheRepository
}

// NewClientStorages wires the repositories to a database at cfg.DB.DSN.
// The database is not opened here; call DB.Initialize at startup or let the
// first insert open it.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) *ClientStorages {
	logger.Info().Str("func", "NewClientStorages").Msg("creating new storages...")

	db := NewDB(cfg.DB.DSN, logger)

	return &ClientStorages{
		DB:             db,
		Records:        NewRecordRepository(db, logger),
		PendingActions: NewPendingActionRepository(db, logger),
		Cache:          NewCacheRepository(db, logger),
	}
}
