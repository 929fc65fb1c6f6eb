// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"strings"

	"github.com/jeranaias/polly-tui/internal/model"
)

// documentField converts a selection to the "document" member of the /ask
// body: the sentinel string, one identifier as a string, or a list.
func documentField(sel model.Selection) (any, error) {
	switch sel.Kind() {
	case model.SelectionGlobal:
		return GlobalDocument, nil
	case model.SelectionDocuments:
		ids := sel.IDs()
		if len(ids) == 1 {
			return ids[0], nil
		}
		return ids, nil
	default:
		return nil, ErrEmptySelection
	}
}

// joinedDocuments converts a selection to the "document" form field, which
// carries several identifiers comma-joined.
func joinedDocuments(sel model.Selection) (string, error) {
	switch sel.Kind() {
	case model.SelectionGlobal:
		return GlobalDocument, nil
	case model.SelectionDocuments:
		return strings.Join(sel.IDs(), ","), nil
	default:
		return "", ErrEmptySelection
	}
}
