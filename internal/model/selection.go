// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// DOCUMENT SELECTION
// =============================================================================

// SelectionKind tags a Selection.
type SelectionKind int

const (
	// SelectionNone means the user is in explicit mode with nothing chosen.
	// It blocks every request.
	SelectionNone SelectionKind = iota
	// SelectionGlobal searches across every document.
	SelectionGlobal
	// SelectionDocuments restricts the scope to a non-empty list of documents.
	SelectionDocuments
)

// String returns a short name for logs.
func (k SelectionKind) String() string {
	switch k {
	case SelectionGlobal:
		return "global"
	case SelectionDocuments:
		return "documents"
	default:
		return "none"
	}
}

// Selection is the document scope of a request. The zero value is
// SelectionNone. A Selection of kind SelectionDocuments always carries at
// least one ID.
type Selection struct {
	kind SelectionKind
	ids  []string
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{kind: SelectionNone}
}

// GlobalSelection returns the all-documents sentinel.
func GlobalSelection() Selection {
	return Selection{kind: SelectionGlobal}
}

// DocumentsSelection returns a selection over ids. Blank and duplicate IDs
// are dropped; if nothing remains the result is NoSelection.
func DocumentsSelection(ids ...string) Selection {
	seen := make(map[string]struct{}, len(ids))
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return NoSelection()
	}
	return Selection{kind: SelectionDocuments, ids: kept}
}

// Kind returns the selection tag.
func (s Selection) Kind() SelectionKind { return s.kind }

// IsNone reports whether the selection blocks submission.
func (s Selection) IsNone() bool { return s.kind == SelectionNone }

// IsGlobal reports whether the selection is the all-documents sentinel.
func (s Selection) IsGlobal() bool { return s.kind == SelectionGlobal }

// IDs returns a copy of the selected document IDs (nil unless kind is
// SelectionDocuments).
func (s Selection) IDs() []string {
	if s.kind != SelectionDocuments {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected documents.
func (s Selection) Len() int {
	return len(s.ids)
}

// String returns a short human-readable form for logs.
func (s Selection) String() string {
	switch s.kind {
	case SelectionGlobal:
		return "global"
	case SelectionDocuments:
		return "documents[" + strings.Join(s.ids, ", ") + "]"
	default:
		return "none"
	}
}
