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
	"github.com/MKhiriev/livyflow/models"
)

type cacheRepository struct {
	q      querierFunc
	logger *logger.Logger
	now    func() time.Time
}

func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		q:      db.querier,
		logger: logger,
		now:    defaultNow,
	}
}

func (c *cacheRepository) CacheResponse(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	q, err := c.q(ctx, openOnDemand)
	if err != nil {
		return err
	}

	now := c.now()
	expiry := now.Add(ttl)

	if _, err = q.ExecContext(ctx, upsertCacheEntry, key, payload(data), now, expiry.UnixNano()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "cacheRepository.CacheResponse").
			Str("key", key).
			Msg("failed to write cache entry")
		return fmt.Errorf("failed to cache response: %w", err)
	}

	return nil
}

func (c *cacheRepository) GetCachedResponse(ctx context.Context, key string) (json.RawMessage, bool, error) {
	log := logger.FromContext(ctx)

	q, err := c.q(ctx, requireInitialized)
	if err != nil {
		return nil, false, err
	}

	var (
		data      []byte
		expiresAt int64
	)
	err = q.QueryRowContext(ctx, getCacheEntry, key).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.GetCachedResponse").Str("key", key).Msg("failed to read cache entry")
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	now := c.now()
	entry := models.CacheEntry{Key: key, Data: data, Expiry: time.Unix(0, expiresAt)}
	if entry.Expired(now) {
		if _, err = q.ExecContext(ctx, deleteExpiredCacheEntry, key, now.UnixNano()); err != nil {
			return nil, false, fmt.Errorf("failed to delete expired cache entry: %w", err)
		}
		log.Debug().Str("func", "cacheRepository.GetCachedResponse").Str("key", key).Msg("cache entry expired")
		return nil, false, nil
	}

	return entry.Data, true, nil
}

func (c *cacheRepository) Evict(ctx context.Context, key string) error {
	q, err := c.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	if _, err = q.ExecContext(ctx, deleteCacheEntry, key); err != nil {
		return fmt.Errorf("failed to evict cache entry: %w", err)
	}

	return nil
}

func (c *cacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	q, err := c.q(ctx, requireInitialized)
	if err != nil {
		return 0, err
	}

	res, err := q.ExecContext(ctx, deleteExpiredCacheEntries, c.now().UnixNano())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "cacheRepository.PurgeExpired").Msg("failed to purge cache")
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged cache entries: %w", err)
	}

	return n, nil
}

func (c *cacheRepository) Clear(ctx context.Context) error {
	q, err := c.q(ctx, requireInitialized)
	if err != nil {
		return err
	}

	if _, err = q.ExecContext(ctx, clearCacheEntries); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}
