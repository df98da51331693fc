// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// ActionType tags which remote mutation a pending action stands for.
type ActionType string

const (
	ActionCreateTransaction ActionType = "CREATE_TRANSACTION"
	ActionUpdateTransaction ActionType = "UPDATE_TRANSACTION"
	ActionDeleteTransaction ActionType = "DELETE_TRANSACTION"
	ActionCreateBudget      ActionType = "CREATE_BUDGET"
	ActionUpdateBudget      ActionType = "UPDATE_BUDGET"
	ActionDeleteBudget      ActionType = "DELETE_BUDGET"
)

// MaxActionRetries is the number of failed attempts after which a pending
// action is dropped from the queue.
const MaxActionRetries = 3

// PendingAction is a mutation intent recorded while the client could not
// reach the server. Actions are executed in ID order.
type PendingAction struct {
	ID   int64           `json:"id"`
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data"`
	// IdempotencyKey is sent with the remote call so that a replay after a
	// crash is recognised by the server.
	IdempotencyKey string    `json:"idempotency_key"`
	Timestamp      time.Time `json:"timestamp"`
	Retries        int       `json:"retries"`
}

// Exhausted reports whether the action reached the retry cap.
func (a PendingAction) Exhausted() bool {
	return a.Retries >= MaxActionRetries
}

// RecordActionPayload is the Data of every record-level action: it points
// at the local record and carries the payload as it was when queued.
type RecordActionPayload struct {
	LocalID    int64           `json:"local_id"`
	Collection string          `json:"collection"`
	ServerID   string          `json:"server_id,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
}
