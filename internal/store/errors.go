// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by the local store. Callers should use [errors.Is]
// to match against these values.
var (
	// ErrStoreUnavailable is returned when the database file cannot be opened
	// or migrated. Initialization may be retried.
	ErrStoreUnavailable = errors.New("local store unavailable")

	// ErrNotInitialized is returned by operations that require a previously
	// initialized store.
	ErrNotInitialized = errors.New("local store is not initialized")

	// ErrUnknownCollection is returned when a collection name is not one of
	// the declared collections.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownIndex is returned when a query filters by an index the
	// collection does not declare.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrRecordIDRequired is returned by Put when the record carries no ID.
	ErrRecordIDRequired = errors.New("record id is required")

	// ErrRecordNotFound is returned when an update targets a record that
	// does not exist.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrPendingActionNotFound is returned when RecordFailure targets an
	// action that is no longer queued.
	ErrPendingActionNotFound = errors.New("pending action was not found")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a new
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails.
	ErrCommitingTransaction = errors.New("failed to commit transaction")
)
