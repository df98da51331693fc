// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a memoized remote response keyed by a request fingerprint.
type CacheEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Expiry    time.Time       `json:"expiry"`
}

// Expired reports whether the entry is no longer valid at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.Expiry)
}
