// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // sync pass had failures, client offline
	ExitCommandError = 2 // bad flags, store unavailable
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying error.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// outputFormatter renders command results as text or JSON.
type outputFormatter struct {
	format string
	w      io.Writer
}

type cliResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// success writes data. In text mode render produces the human form.
func (f *outputFormatter) success(data any, render func(w io.Writer)) error {
	if f.format == FormatJSON {
		return json.NewEncoder(f.w).Encode(cliResponse{Status: "ok", Data: data})
	}

	render(f.w)
	return nil
}
