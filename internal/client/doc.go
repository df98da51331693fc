// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the livyflow client runtime.
//
// It wires the local store, the remote adapter, the connectivity monitor,
// client services and background workers into a single process lifecycle.
package client
