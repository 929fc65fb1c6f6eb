// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when a request is attempted without any
// document scope. Callers are expected to check the selection first; this is
// the last line before the wire.
var ErrEmptySelection = errors.New("no document selected")

// ErrGlobalSelection is returned by RevisionSheet when asked for the
// all-documents scope, which the backend cannot summarize.
var ErrGlobalSelection = errors.New("revision sheets need specific documents")

// TransportError reports a request that did not complete: DNS, connection
// refused, timeout, cancelled context, or a body that could not be read.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response body that is not valid JSON or
// lacks the expected fields.
type MalformedResponseError struct {
	Op     string
	Status int
	// Snippet is the start of the body, for the log only.
	Snippet string
	Err     error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: malformed response (HTTP %d)", e.Op, e.Status)
}

// Unwrap returns the underlying decode error, if any.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// BackendError is a logical error reported by the backend.
type BackendError struct {
	Op      string
	Status  int
	Message string
	Details string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: backend error (HTTP %d): %s (%s)", e.Op, e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: backend error (HTTP %d): %s", e.Op, e.Status, e.Message)
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsMalformed reports whether err is (or wraps) a *MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// AsBackendError returns the *BackendError in err's chain, if any.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
