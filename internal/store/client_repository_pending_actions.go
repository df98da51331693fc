// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/utils"
	"github.com/MKhiriev/livyflow/models"
)

func defaultIdempotencyKey() string {
	return utils.NewUUIDGenerator().Generate()
}

type pendingActionRepository struct {
	q      querierFunc
	logger *logger.Logger
	now    func() time.Time
	newKey func() string
}

func NewPendingActionRepository(db *DB, logger *logger.Logger) PendingActionRepository {
	return &pendingActionRepository{
		q:      db.querier,
		logger: logger,
		now:    defaultNow,
		newKey: defaultIdempotencyKey,
	}
}

func (p *pendingActionRepository) Enqueue(ctx context.Context, actionType models.ActionType, data json.RawMessage) (models.PendingAction, error) {
	log := logger.FromContext(ctx)

	q, err := p.q(ctx, openOnDemand)
	if err != nil {
		return models.PendingAction{}, err
	}

	action := models.PendingAction{
		Type:           actionType,
		Data:           data,
		IdempotencyKey: p.newKey(),
		Timestamp:      p.now(),
	}

	res, err := q.ExecContext(ctx, enqueuePendingAction,
		action.Type,
		payload(action.Data),
		action.IdempotencyKey,
		action.Timestamp,
	)
	if err != nil {
		log.Err(err).
			Str("func", "pendingActionRepository.Enqueue").
			Str("type", string(actionType)).
			Msg("failed to enqueue pending action")
		return models.PendingAction{}, fmt.Errorf("failed to enqueue %s action: %w", actionType, err)
	}

	if action.ID, err = res.LastInsertId(); err != nil {
		return models.PendingAction{}, fmt.Errorf("failed to read id of enqueued action: %w", err)
	}

	log.Debug().
		Str("func", "pendingActionRepository.Enqueue").
		Int64("id", action.ID).
		Str("type", string(actionType)).
		Msg("pending action enqueued")

	return action, nil
}

func (p *pendingActionRepository) ListAll(ctx context.Context) ([]models.PendingAction, error) {
	log := logger.FromContext(ctx)

	q, err := p.q(ctx, requireInitialized)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, listPendingActions)
	if err != nil {
		log.Err(err).Str("func", "pendingActionRepository.ListAll").Msg("failed to query pending actions")
		return nil, fmt.Errorf("failed to query pending actions: %w", err)
	}
	defer rows.Close()

	actions := make([]models.PendingAction, 0)
	for rows.Next() {
		var (
			action models.PendingAction
			data   []byte
		)

		scanErr := rows.Scan(
			&action.ID,
			&action.Type,
			&data,
			&action.IdempotencyKey,
			&action.Timestamp,
			&action.Retries,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "pendingActionRepository.ListAll").Msg("failed to scan pending action row")
			return nil, fmt.Errorf("failed to scan pending action row: %w", scanErr)
		}
		action.Data = data

		actions = append(actions, action)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "pendingActionRepository.ListAll").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating pending action rows: %w", rowsErr)
	}

	return actions, nil
}

func (p *pendingActionRepository) Remove(ctx context.Context, id int64) error {
	q, err := p.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	if _, err = q.ExecContext(ctx, removePendingAction, id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingActionRepository.Remove").
			Int64("id", id).
			Msg("failed to remove pending action")
		return fmt.Errorf("failed to remove pending action (id=%d): %w", id, err)
	}

	return nil
}

func (p *pendingActionRepository) RecordFailure(ctx context.Context, action models.PendingAction) (models.PendingAction, error) {
	q, err := p.q(ctx, requireInitialized)
	if err != nil {
		return action, err
	}

	var retries int
	err = q.QueryRowContext(ctx, incrementPendingActionRetries, action.ID).Scan(&retries)
	if errors.Is(err, sql.ErrNoRows) {
		return action, fmt.Errorf("%w: id=%d", ErrPendingActionNotFound, action.ID)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingActionRepository.RecordFailure").
			Int64("id", action.ID).
			Msg("failed to increment retries")
		return action, fmt.Errorf("failed to record failure of pending action (id=%d): %w", action.ID, err)
	}

	action.Retries = retries
	return action, nil
}

func (p *pendingActionRepository) Count(ctx context.Context) (int64, error) {
	q, err := p.q(ctx, requireInitialized)
	if err != nil {
		return 0, err
	}

	var n int64
	if err = q.QueryRowContext(ctx, countPendingActions).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending actions: %w", err)
	}

	return n, nil
}

func (p *pendingActionRepository) Clear(ctx context.Context) error {
	q, err := p.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	if _, err = q.ExecContext(ctx, clearPendingActions); err != nil {
		return fmt.Errorf("failed to clear pending actions: %w", err)
	}

	return nil
}
