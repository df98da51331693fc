// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncReport summarises a single synchronization pass.
type SyncReport struct {
	// Skipped is true when another pass was already running.
	Skipped bool

	ActionsExecuted int
	ActionsFailed   int
	ActionsDropped  int

	RecordsSynced int
	RecordsFailed int

	StartedAt  time.Time
	FinishedAt time.Time
}
