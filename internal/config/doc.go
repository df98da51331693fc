// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the livyflow client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. Config file (JSON, or YAML when the path ends in .yaml/.yml)
//
// The main entry points are [GetStructuredConfig] for the merged raw view and
// [GetClientConfig] for the validated client runtime view.
package config
