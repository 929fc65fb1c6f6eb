// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/polly-tui/internal/ui/components"
	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/view"
)

// Layout constants. They must match the rendered heights below.
const (
	headerHeight    = 1
	statusBarHeight = 1
	inputHeight     = 5 // textarea (3) + border (2)
	sideWidthWide   = 34
	narrowListRows  = 3
	minMainWidth    = 20
	minViewport     = 3
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the model.
func (m Model) View() string {
	if !m.ready {
		return "Initialisation..."
	}

	main := m.viewport.View()
	if m.showHelp {
		main = lipgloss.NewStyle().
			Width(m.viewport.Width).
			Height(m.viewport.Height).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
	}
	column := lipgloss.JoinVertical(lipgloss.Left, main, m.renderInput())

	var body string
	if m.wide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSide(), column)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderSide(), column)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m Model) wide() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

func (m Model) mainWidth() int {
	w := m.width
	if m.wide() {
		w -= m.sideWidth
	}
	if w < minMainWidth {
		w = minMainWidth
	}
	return w
}

// =============================================================================
// LAYOUT AND CONTENT
// =============================================================================

// refresh recomputes the layout and the conversation content. The view
// follows new content when bottom is set or when it was already at the
// bottom.
func (m *Model) refresh(bottom bool) {
	if !m.ready {
		return
	}
	m.layout()

	atBottom := m.viewport.AtBottom()
	conv := components.Conversation{
		Theme:      m.theme,
		Markdown:   m.markdown,
		Spinner:    m.spinner,
		Timestamps: true,
	}
	width := m.viewport.Width
	content := conv.Render(view.Messages(m.ctrl.Log().Entries()), width)
	if q := view.QuizPanel(m.ctrl.Board(), m.question); q != nil {
		content += "\n\n" + components.QuizPanel(m.theme, q, width, m.focus == FocusQuiz)
	}
	m.viewport.SetContent(content)
	if bottom || atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) layout() {
	if m.wide() {
		m.sideWidth = sideWidthWide
	} else {
		m.sideWidth = m.width
	}
	main := m.mainWidth()

	m.input.SetWidth(main - 4)
	m.filter.Width = m.sideWidth - 8

	m.sideHeight = 0
	if !m.wide() {
		m.sideHeight = lipgloss.Height(m.renderSide())
	}
	h := m.height - headerHeight - statusBarHeight - inputHeight - m.sideHeight
	if h < minViewport {
		h = minViewport
	}
	m.viewport.Width = main
	m.viewport.Height = h
	m.help.Width = main
}

// listRows is how many documents the selector shows at once.
func (m Model) listRows() int {
	if !m.wide() {
		return narrowListRows
	}
	// title, mode line, filter, status, sheet button, borders
	rows := m.height - headerHeight - statusBarHeight - 10
	if rows < narrowListRows {
		rows = narrowListRows
	}
	return rows
}

// =============================================================================
// PANELS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("🦜 Polly")
	info := m.theme.HeaderMuted.Render(" " + m.opts.Server)
	return m.theme.Header.Width(m.width).MaxHeight(headerHeight).Render(title + info)
}

func (m Model) renderSide() string {
	snap := m.ctrl.Selector().Snapshot()
	panel := components.SelectorPanel(
		m.theme,
		view.SelectorPanel(snap, m.cursor),
		m.filter.View(),
		m.sideWidth,
		m.listRows(),
		m.focus == FocusSelector,
	)
	button := components.SheetButton(m.theme, view.SheetPanel(m.ctrl.SheetBusy(), m.ctrl.Sheet()), m.spinner.Frame())
	return lipgloss.NewStyle().Width(m.sideWidth).Render(panel + "\n" + button)
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.focus == FocusInput {
		style = m.theme.InputFocused
	}
	return style.Width(m.mainWidth() - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var parts []string
	parts = append(parts, m.ctrl.Selector().Status().Text)
	if n := m.ctrl.InFlight(); n > 0 {
		parts = append(parts, fmt.Sprintf("%s %d en cours", m.spinner.Frame(), n))
	}
	if q := view.QuizPanel(m.ctrl.Board(), m.question); q != nil {
		parts = append(parts, "QCM "+q.Progress())
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	bindings := m.keys.ShortHelp()
	shortcuts := make([]components.Shortcut, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		shortcuts = append(shortcuts, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return components.StatusBar(m.theme, m.width, strings.Join(parts, " · "), shortcuts)
}
