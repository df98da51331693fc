// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/migrations"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories run queries on.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type accessMode int

const (
	// openOnDemand initializes the store when it has not been initialized yet.
	openOnDemand accessMode = iota
	// requireInitialized fails with ErrNotInitialized instead.
	requireInitialized
)

// querierFunc resolves the handle a repository runs a single operation on.
type querierFunc func(ctx context.Context, mode accessMode) (DBTX, error)

// DB is the lazily opened SQLite database of the client.
type DB struct {
	dsn     string
	logger  *logger.Logger
	migrate func(ctx context.Context, db *sql.DB) error

	group singleflight.Group

	mu   sync.RWMutex
	conn *sql.DB
}

// NewDB returns a DB for the file at dsn. Nothing is opened until
// Initialize or the first on-demand operation.
func NewDB(dsn string, log *logger.Logger) *DB {
	return &DB{
		dsn:     dsn,
		logger:  log,
		migrate: migrations.Migrate,
	}
}

// newDBFromConn wraps an already opened connection. Used by tests.
func newDBFromConn(conn *sql.DB, log *logger.Logger) *DB {
	return &DB{logger: log, conn: conn, migrate: migrations.Migrate}
}

// Initialize opens the database, creating the file if needed, and applies
// the schema. It is idempotent and concurrent callers share a single attempt.
// On failure it returns ErrStoreUnavailable and a later call retries. A
// caller whose ctx ends stops waiting, but the attempt itself runs on.
func (db *DB) Initialize(ctx context.Context) error {
	if db.initialized() {
		return nil
	}

	// the shared attempt outlives a caller that gives up waiting
	initCtx := context.WithoutCancel(ctx)
	ch := db.group.DoChan("initialize", func() (any, error) {
		if db.initialized() {
			return nil, nil
		}

		conn, err := openSQLite(initCtx, db.dsn, db.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		if err = db.migrate(initCtx, conn); err != nil {
			db.logger.Err(err).Str("func", "DB.Initialize").Msg("migration failed")
			_ = conn.Close()
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		db.mu.Lock()
		db.conn = conn
		db.mu.Unlock()

		db.logger.Info().Str("func", "DB.Initialize").Str("dsn", db.dsn).Msg("local store initialized")
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
	}
}

// Initialized reports whether Initialize has succeeded.
func (db *DB) Initialized() bool {
	return db.initialized()
}

func (db *DB) initialized() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn != nil
}

func (db *DB) handle() (*sql.DB, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.conn == nil {
		return nil, ErrNotInitialized
	}
	return db.conn, nil
}

func (db *DB) open(ctx context.Context) (*sql.DB, error) {
	if err := db.Initialize(ctx); err != nil {
		return nil, err
	}
	return db.handle()
}

func (db *DB) querier(ctx context.Context, mode accessMode) (DBTX, error) {
	if mode == requireInitialized {
		return db.handle()
	}
	return db.open(ctx)
}

// Close closes the underlying connection. The DB may be initialized again.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

func txQuerier(tx *sql.Tx) querierFunc {
	return func(context.Context, accessMode) (DBTX, error) {
		return tx, nil
	}
}
