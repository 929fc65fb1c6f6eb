// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the tutoring backend.
//
// It speaks the four endpoints the client consumes:
//
//	GET  /documents                -> {"documents": [...]}
//	POST /ask                      JSON {question, history, document} -> {"answer": ...}
//	POST /generate-qcm             form question, document -> quiz JSON or {"error": ...}
//	POST /generate-revision-sheet  form document -> PDF stream
//
// Document scopes arrive as model.Selection values and are converted to the
// wire format here and nowhere else: the sentinel "GLOBAL", a single
// identifier, a list of identifiers (ask), or a comma-joined string (forms).
//
// Failures are returned as one of three typed errors so callers can tell
// them apart with errors.As:
//
//   - *TransportError: the request never produced a response
//   - *MalformedResponseError: the body was not the JSON we expected
//   - *BackendError: the backend answered with an {"error": ...} payload
//     or a non-2xx status
//
// No request is ever retried.
package backend
