// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/livyflow/internal/logger"
)

func newTestCache(t *testing.T) (*cacheRepository, *fakeClock) {
	t.Helper()
	s := newTestStorages(t, true)
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return &cacheRepository{q: s.DB.querier, logger: logger.Nop(), now: clock.Now}, clock
}

func TestCacheRepository_ZeroTTLIsImmediatelyExpired(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.CacheResponse(ctx, "k", []byte(`{"v":1}`), 0))

	data, ok, err := cache.GetCachedResponse(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)

	// the expired read purged the entry
	n, err := cache.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCacheRepository_FreshThenExpired(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.CacheResponse(ctx, "k", []byte(`{"v":1}`), time.Minute))

	data, ok, err := cache.GetCachedResponse(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(data))

	clock.Advance(59 * time.Second)
	_, ok, err = cache.GetCachedResponse(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// exactly at expiry the entry is gone
	clock.Advance(time.Second)
	_, ok, err = cache.GetCachedResponse(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_Overwrite(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.CacheResponse(ctx, "k", []byte(`{"v":1}`), time.Second))
	require.NoError(t, cache.CacheResponse(ctx, "k", []byte(`{"v":2}`), time.Hour))

	clock.Advance(time.Minute)
	data, ok, err := cache.GetCachedResponse(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestCacheRepository_Missing(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok, err := cache.GetCachedResponse(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_EvictPurgeClear(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.CacheResponse(ctx, "short-1", []byte(`1`), time.Second))
	require.NoError(t, cache.CacheResponse(ctx, "short-2", []byte(`2`), time.Second))
	require.NoError(t, cache.CacheResponse(ctx, "long", []byte(`3`), time.Hour))
	require.NoError(t, cache.CacheResponse(ctx, "evicted", []byte(`4`), time.Hour))

	require.NoError(t, cache.Evict(ctx, "evicted"))
	_, ok, err := cache.GetCachedResponse(ctx, "evicted")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Minute)
	n, err := cache.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err = cache.GetCachedResponse(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Clear(ctx))
	_, ok, err = cache.GetCachedResponse(ctx, "long")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_WritesInitializeOnDemand(t *testing.T) {
	s := newTestStorages(t, false)

	require.NoError(t, s.Cache.CacheResponse(context.Background(), "k", []byte(`{}`), time.Hour))
	assert.True(t, s.DB.Initialized())
}
