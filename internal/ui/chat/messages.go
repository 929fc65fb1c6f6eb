// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/polly-tui/internal/dispatch"
)

// =============================================================================
// ASYNC RESULT MESSAGES
// =============================================================================

// CatalogMsg carries the document list fetched from the backend.
type CatalogMsg struct {
	Documents []string
	Err       error
	// Refresh is set when the user asked for the reload.
	Refresh bool
}

// ResponseMsg carries the outcome of an /ask or /generate-qcm request.
type ResponseMsg struct {
	Outcome dispatch.Outcome
}

// SheetMsg carries the outcome of a revision sheet request.
type SheetMsg struct {
	Outcome dispatch.SheetOutcome
}

// SheetAction names what was done with a ready sheet.
type SheetAction int

const (
	SheetPreviewed SheetAction = iota
	SheetSaved
)

// SheetActionMsg reports a preview or a download.
type SheetActionMsg struct {
	Action SheetAction
	Path   string
	Err    error
}

// ExportMsg reports a transcript export.
type ExportMsg struct {
	Path string
	Err  error
}
