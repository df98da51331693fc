// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrUnknownActionType is reported for queued actions no handler is
	// registered for. Such actions are dropped.
	ErrUnknownActionType = errors.New("unknown pending action type")

	// ErrInvalidActionPayload is reported when a queued action's data cannot
	// be decoded.
	ErrInvalidActionPayload = errors.New("invalid pending action payload")

	// ErrInvalidDataProvided is returned by the facade for values that cannot
	// be stored.
	ErrInvalidDataProvided = errors.New("invalid data provided")
)
