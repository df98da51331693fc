// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

// pending_actions
const (
	enqueuePendingAction = `
		INSERT INTO pending_actions (type, data, idempotency_key, timestamp, retries)
		VALUES (?, ?, ?, ?, 0)`

	listPendingActions = `
		SELECT id, type, data, idempotency_key, timestamp, retries
		FROM pending_actions
		ORDER BY id`

	removePendingAction = `DELETE FROM pending_actions WHERE id = ?`

	incrementPendingActionRetries = `
		UPDATE pending_actions
		SET retries = retries + 1
		WHERE id = ?
		RETURNING retries`

	countPendingActions = `SELECT COUNT(*) FROM pending_actions`

	clearPendingActions = `DELETE FROM pending_actions`
)

// cache_entries
const (
	upsertCacheEntry = `
		INSERT INTO cache_entries (key, data, timestamp, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			timestamp = excluded.timestamp,
			expires_at = excluded.expires_at`

	getCacheEntry = `SELECT data, expires_at FROM cache_entries WHERE key = ?`

	deleteCacheEntry = `DELETE FROM cache_entries WHERE key = ?`

	// deleteExpiredCacheEntry leaves alone an entry rewritten after the read.
	deleteExpiredCacheEntry = `DELETE FROM cache_entries WHERE key = ? AND expires_at <= ?`

	deleteExpiredCacheEntries = `DELETE FROM cache_entries WHERE expires_at <= ?`

	clearCacheEntries = `DELETE FROM cache_entries`
)
