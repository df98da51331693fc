// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides the background workers of the livyflow client
// and a Workers aggregate that starts and stops them together.
package workers

import "context"

// Worker is a background loop owned by the client application.
//
// Run must not block: implementations spawn their own goroutine and keep it
// alive until ctx is cancelled or Stop is called. Stop blocks until that
// goroutine has returned.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}

// StateReporter receives connectivity observations. It is satisfied by
// *connectivity.Monitor.
type StateReporter interface {
	SetOnline(online bool) bool
}
