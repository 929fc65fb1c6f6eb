// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the polly CLI.
//
// Commands always return errors; Execute alone prints them and picks the
// exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/polly-tui/internal/backend"
	"github.com/jeranaias/polly-tui/internal/config"
	"github.com/jeranaias/polly-tui/internal/dispatch"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError indicates invalid arguments, including a missing
	// document selection.
	ExitUsageError  = 2
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached or
	// answered garbage.
	ExitNetworkError = 5
	// ExitBackendError indicates the backend reported an error.
	ExitBackendError = 6
	ExitTimeoutError = 8
	// ExitInterrupted follows the shell convention for SIGINT.
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports invalid command line input.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// usagef builds a UsageError.
func usagef(format string, args ...any) error {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// reportedError wraps an error whose message the command already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reported marks err as already shown to the user. nil stays nil.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var cfgErrs config.ValidationErrors
	var cfgErr config.ValidationError
	switch {
	case errors.As(err, &usage),
		errors.Is(err, dispatch.ErrNoSelection),
		errors.Is(err, dispatch.ErrGlobalSelection),
		errors.Is(err, dispatch.ErrEmptyInput),
		errors.Is(err, ErrNotATerminal):
		return ExitUsageError
	case errors.As(err, &cfgErrs), errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case backend.IsTransport(err), backend.IsMalformed(err):
		return ExitNetworkError
	}
	if _, ok := backend.AsBackendError(err); ok {
		return ExitBackendError
	}
	return ExitGeneralError
}

// DisplayError prints err unless the command already reported it.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var shown *reportedError
	if errors.As(err, &shown) {
		return
	}
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Erreur :"), err)
}
