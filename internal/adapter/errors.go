// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

// ErrRemoteCallFailed is wrapped by every error a remote call returns.
var ErrRemoteCallFailed = errors.New("remote call failed")

// Errors mapped from HTTP status codes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// ErrEmptyServerID is returned when the server accepted a create but did not
// report the identity it assigned.
var ErrEmptyServerID = errors.New("server returned empty id")
