// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selector

import (
	"fmt"
	"strings"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/util"
)

// =============================================================================
// MODE
// =============================================================================

// Mode is the selector scope mode.
type Mode int

const (
	// ModeGlobal searches across all documents.
	ModeGlobal Mode = iota
	// ModePrecis restricts the scope to explicitly chosen documents.
	ModePrecis
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModePrecis {
		return "PRECIS"
	}
	return "GLOBAL"
}

// ParseMode parses "global" or "precis" (any case).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "global", "all", "tous":
		return ModeGlobal, nil
	case "precis", "précis", "specific":
		return ModePrecis, nil
	default:
		return ModeGlobal, fmt.Errorf("unknown selector mode %q (want global or precis)", s)
	}
}

// =============================================================================
// VIEW TYPES
// =============================================================================

// Item is one listed document.
type Item struct {
	ID     string
	Label  string
	Chosen bool
}

// Status summarizes the current scope for the status indicator.
type Status struct {
	Mode    Mode
	Count   int
	Warning bool
	Text    string
}

// Snapshot is an immutable copy of everything a view needs.
type Snapshot struct {
	Mode      Mode
	ListShown bool
	Filter    string
	Items     []Item
	Total     int
	Status    Status
}

// =============================================================================
// SELECTOR
// =============================================================================

// Selector holds the document scope. It is not safe for concurrent use.
type Selector struct {
	mode      Mode
	catalog   []string
	chosen    []string
	chosenSet map[string]struct{}
	filter    string
	status    Status
}

// New creates a selector over catalog, starting in GLOBAL mode.
func New(catalog []string) *Selector {
	s := &Selector{
		mode:      ModeGlobal,
		chosenSet: make(map[string]struct{}),
	}
	s.SetCatalog(catalog)
	return s
}

// SetCatalog replaces the list of known documents. Chosen documents stay
// chosen even if they are no longer listed.
func (s *Selector) SetCatalog(ids []string) {
	s.catalog = s.catalog[:0]
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.catalog = append(s.catalog, id)
	}
	s.refreshStatus()
}

// Catalog returns a copy of the known document IDs in catalog order.
func (s *Selector) Catalog() []string {
	out := make([]string, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Mode returns the current mode.
func (s *Selector) Mode() Mode {
	return s.mode
}

// SetMode switches between GLOBAL and PRECIS.
func (s *Selector) SetMode(m Mode) {
	s.mode = m
	s.refreshStatus()
}

// Toggle adds id to the chosen set if absent, otherwise removes it.
// Only meaningful in PRECIS mode; in GLOBAL mode it does nothing and returns
// false.
func (s *Selector) Toggle(id string) bool {
	if s.mode != ModePrecis || id == "" {
		return false
	}
	if _, ok := s.chosenSet[id]; ok {
		delete(s.chosenSet, id)
		for i, c := range s.chosen {
			if c == id {
				s.chosen = append(s.chosen[:i], s.chosen[i+1:]...)
				break
			}
		}
	} else {
		s.chosenSet[id] = struct{}{}
		s.chosen = append(s.chosen, id)
	}
	s.refreshStatus()
	return true
}

// IsChosen reports whether id is in the chosen set.
func (s *Selector) IsChosen(id string) bool {
	_, ok := s.chosenSet[id]
	return ok
}

// Chosen returns the chosen IDs in the order they were toggled on.
func (s *Selector) Chosen() []string {
	out := make([]string, len(s.chosen))
	copy(out, s.chosen)
	return out
}

// Selection returns the scope of the next request.
func (s *Selector) Selection() model.Selection {
	if s.mode == ModeGlobal {
		return model.GlobalSelection()
	}
	return model.DocumentsSelection(s.chosen...)
}

// Status returns the status indicator for the current state.
func (s *Selector) Status() Status {
	return s.status
}

// SetFilter narrows the listed documents to those whose label contains
// query, ignoring case.
func (s *Selector) SetFilter(query string) {
	s.filter = query
}

// Filter returns the current filter text.
func (s *Selector) Filter() string {
	return s.filter
}

// ListShown reports whether the document list is visible (PRECIS mode).
func (s *Selector) ListShown() bool {
	return s.mode == ModePrecis
}

// Visible returns the catalog entries matching the filter, in catalog order.
func (s *Selector) Visible() []Item {
	items := make([]Item, 0, len(s.catalog))
	query := strings.TrimSpace(s.filter)
	for _, id := range s.catalog {
		label := Label(id)
		if !util.FoldContains(label, query) {
			continue
		}
		items = append(items, Item{ID: id, Label: label, Chosen: s.IsChosen(id)})
	}
	return items
}

// Snapshot returns a copy of the selector state for rendering.
func (s *Selector) Snapshot() Snapshot {
	return Snapshot{
		Mode:      s.mode,
		ListShown: s.ListShown(),
		Filter:    s.filter,
		Items:     s.Visible(),
		Total:     len(s.catalog),
		Status:    s.status,
	}
}

// Label returns the display label of a document ID.
func Label(id string) string {
	return util.StripExtension(id)
}

func (s *Selector) refreshStatus() {
	st := Status{Mode: s.mode, Count: len(s.chosen)}
	switch {
	case s.mode == ModeGlobal:
		st.Count = 0
		st.Text = "🌐 Mode global : tous les cours"
	case len(s.chosen) == 0:
		st.Warning = true
		st.Text = "⚠️ Aucun cours sélectionné : choisissez au moins un document"
	case len(s.chosen) == 1:
		st.Text = fmt.Sprintf("📘 Cours sélectionné : %s", Label(s.chosen[0]))
	default:
		st.Text = fmt.Sprintf("📘 %d cours sélectionnés", len(s.chosen))
	}
	s.status = st
}
