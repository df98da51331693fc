// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/livyflow/internal/logger"
)

// Tx exposes the record and queue repositories bound to one SQLite
// transaction.
type Tx struct {
	Records        RecordRepository
	PendingActions PendingActionRepository
}

// WithTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back when fn returns an error or panics; a
// panic is re-raised after the rollback.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) (err error) {
	log := logger.FromContext(ctx)

	conn, err := db.open(ctx)
	if err != nil {
		return err
	}

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "DB.WithTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
			return
		}

		if cErr := sqlTx.Commit(); cErr != nil {
			log.Err(cErr).Str("func", "DB.WithTx").Msg("failed to commit transaction")
			err = fmt.Errorf("%w: %w", ErrCommitingTransaction, cErr)
		}
	}()

	q := txQuerier(sqlTx)
	tx := &Tx{
		Records:        &recordRepository{q: q, logger: db.logger, now: defaultNow},
		PendingActions: &pendingActionRepository{q: q, logger: db.logger, now: defaultNow, newKey: defaultIdempotencyKey},
	}

	return fn(ctx, tx)
}
