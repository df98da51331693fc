// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
)

// newTestStorages returns storages over a fresh database file in a temp dir.
func newTestStorages(t *testing.T, initialize bool) *ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "offline.db")}}
	s := NewClientStorages(cfg, logger.Nop())
	t.Cleanup(func() { _ = s.DB.Close() })

	if initialize {
		require.NoError(t, s.DB.Initialize(context.Background()))
	}
	return s
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
