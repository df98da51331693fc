// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// RequestFingerprint derives a stable cache key for a remote read from its
// method, path and query parameters. Parameter order does not matter and the
// method is case-insensitive.
//
// The key is the hex-encoded BLAKE2b-256 digest of
//
//	METHOD\npath\nencoded-params
//
// where encoded-params is the query string with keys sorted.
//
// Example usage:
//
//	key := utils.RequestFingerprint("GET", "/api/v1/transactions", map[string]string{"month": "2025-01"})
func RequestFingerprint(method, path string, params map[string]string) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(values.Encode())

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
