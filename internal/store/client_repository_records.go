// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/models"
)

var recordColumns = []string{"id", "server_id", "synced", "data", "created_at", "updated_at", "synced_at", "version"}

func defaultNow() time.Time {
	return time.Now().UTC()
}

type recordRepository struct {
	q      querierFunc
	logger *logger.Logger
	now    func() time.Time
}

func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		q:      db.querier,
		logger: logger,
		now:    defaultNow,
	}
}

func (r *recordRepository) Insert(ctx context.Context, collection string, record models.Record) (int64, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(collection); err != nil {
		return 0, err
	}

	q, err := r.q(ctx, openOnDemand)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Insert").Str("collection", collection).Msg("store is not available")
		return 0, err
	}

	query, args, err := sq.Insert(collection).
		Columns("server_id", "synced", "data", "created_at").
		Values(record.ServerID, false, payload(record.Data), r.now()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Insert").Str("collection", collection).Msg("failed to insert record")
		return 0, fmt.Errorf("failed to insert record into %s: %w", collection, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read id of inserted record: %w", err)
	}

	return id, nil
}

func (r *recordRepository) Put(ctx context.Context, collection string, record models.Record) error {
	log := logger.FromContext(ctx)

	if err := validateCollection(collection); err != nil {
		return err
	}
	if record.ID <= 0 {
		return ErrRecordIDRequired
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	now := r.now()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query, args, err := sq.Insert(collection).
		Columns("id", "server_id", "synced", "data", "created_at", "updated_at").
		Values(record.ID, record.ServerID, false, payload(record.Data), createdAt, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			server_id = COALESCE(excluded.server_id, server_id),
			synced = 0,
			data = excluded.data,
			updated_at = excluded.updated_at,
			version = version + 1`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "recordRepository.Put").
			Str("collection", collection).
			Int64("id", record.ID).
			Msg("failed to upsert record")
		return fmt.Errorf("failed to put record (id=%d) into %s: %w", record.ID, collection, err)
	}

	return nil
}

func (r *recordRepository) Get(ctx context.Context, collection string, id int64) (models.Record, bool, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(collection); err != nil {
		return models.Record{}, false, err
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return models.Record{}, false, err
	}

	query, args, err := sq.Select(recordColumns...).
		From(collection).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Record{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, err := scanRecord(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("collection", collection).
			Int64("id", id).
			Msg("failed to scan record row")
		return models.Record{}, false, fmt.Errorf("failed to get record (id=%d) from %s: %w", id, collection, err)
	}

	return record, true, nil
}

func (r *recordRepository) Query(ctx context.Context, collection string, filters ...IndexFilter) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	where := sq.Eq{}
	for _, f := range filters {
		expr, err := indexExpr(collection, f.Index)
		if err != nil {
			return nil, err
		}
		where[expr] = f.Value
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return nil, err
	}

	builder := sq.Select(recordColumns...).From(collection).OrderBy("id")
	if len(where) > 0 {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.Query").Str("collection", collection).Msg("failed to query records")
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "recordRepository.Query").Str("collection", collection).Msg("failed to scan record row")
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, scanErr)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "recordRepository.Query").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating %s rows: %w", collection, rowsErr)
	}

	return records, nil
}

func (r *recordRepository) MarkSynced(ctx context.Context, collection string, id, version int64, serverID string, at time.Time) (bool, error) {
	log := logger.FromContext(ctx)

	if err := validateCollection(collection); err != nil {
		return false, err
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return false, err
	}

	// server_id is adopted unconditionally; a newer local write keeps the row unsynced.
	query, args, err := sq.Update(collection).
		Set("server_id", serverID).
		Set("synced", sq.Expr("CASE WHEN version = ? THEN 1 ELSE 0 END", version)).
		Set("synced_at", sq.Expr("CASE WHEN version = ? THEN ? ELSE synced_at END", version, at.UTC())).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING synced").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var synced bool
	err = q.QueryRowContext(ctx, query, args...).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %s id=%d", ErrRecordNotFound, collection, id)
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.MarkSynced").
			Str("collection", collection).
			Int64("id", id).
			Msg("failed to mark record synced")
		return false, fmt.Errorf("failed to mark record (id=%d) in %s synced: %w", id, collection, err)
	}

	if !synced {
		log.Debug().
			Str("collection", collection).
			Int64("id", id).
			Int64("version", version).
			Msg("record changed while being pushed, left unsynced")
	}

	return synced, nil
}

func (r *recordRepository) Remove(ctx context.Context, collection string, id int64) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(collection).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "recordRepository.Remove").
			Str("collection", collection).
			Int64("id", id).
			Msg("failed to delete record")
		return fmt.Errorf("failed to remove record (id=%d) from %s: %w", id, collection, err)
	}

	return nil
}

func (r *recordRepository) Clear(ctx context.Context, collection string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	q, err := r.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(collection).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear %s: %w", collection, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record    models.Record
		serverID  sql.NullString
		data      []byte
		updatedAt sql.NullTime
		syncedAt  sql.NullTime
	)

	if err := row.Scan(&record.ID, &serverID, &record.Synced, &data, &record.CreatedAt, &updatedAt, &syncedAt, &record.Version); err != nil {
		return models.Record{}, err
	}

	if serverID.Valid {
		record.ServerID = &serverID.String
	}
	if updatedAt.Valid {
		record.UpdatedAt = &updatedAt.Time
	}
	if syncedAt.Valid {
		record.SyncedAt = &syncedAt.Time
	}
	record.Data = data

	return record, nil
}

// payload returns the TEXT stored for a record payload.
func payload(data []byte) string {
	if len(data) == 0 {
		return "{}"
	}
	return string(data)
}
