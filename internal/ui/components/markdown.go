// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Markdown renders assistant answers with glamour. Renderers are built lazily
// per wrap width. The zero value is not usable; call NewMarkdown.
type Markdown struct {
	style     string
	enabled   bool
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown returns a renderer using glamour standard style ("dark" or
// "light"). With enabled false, Render only wraps text.
func NewMarkdown(style string, enabled bool) *Markdown {
	return &Markdown{
		style:     style,
		enabled:   enabled,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render formats content for width columns. Rendering failures fall back to
// the wrapped plain text.
func (m *Markdown) Render(content string, width int) string {
	if width < 20 {
		width = 20
	}
	if m == nil || !m.enabled {
		return Wrap(content, width)
	}

	r, ok := m.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.enabled = false
			return Wrap(content, width)
		}
		m.renderers[width] = r
	}

	out, err := r.Render(content)
	if err != nil {
		return Wrap(content, width)
	}
	return strings.Trim(out, "\n")
}

// Wrap wraps plain text to width columns, keeping explicit line breaks.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
