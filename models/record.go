// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Record is a domain entity (transaction, budget, account) kept in the local
// store. The core treats Data as opaque; only the bookkeeping fields are
// interpreted.
//
// A record with Synced == false and a nil ServerID has never been created on
// the server. A record with Synced == false and a non-nil ServerID is a local
// edit of a record the server already knows.
type Record struct {
	// ID is assigned by the local store and is unique within its collection.
	ID int64 `json:"id"`
	// ServerID is the identity assigned by the server once it accepted the record.
	ServerID *string `json:"server_id,omitempty"`
	// Synced is true once the server holds a copy matching the local state.
	Synced bool `json:"synced"`
	// Version grows with every local write and guards sync confirmation.
	Version int64 `json:"version"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`

	// Data is the domain payload.
	Data json.RawMessage `json:"data"`
}

// HasServerID reports whether the server already assigned an identity.
func (r Record) HasServerID() bool {
	return r.ServerID != nil && *r.ServerID != ""
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}
