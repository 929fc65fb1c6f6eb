// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/export"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/view"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case CatalogMsg:
		return m.handleCatalog(msg)

	case ResponseMsg:
		return m.handleResponse(msg)

	case SheetMsg:
		return m.handleSheet(msg)

	case SheetActionMsg:
		return m.handleSheetAction(msg)

	case ExportMsg:
		return m.handleExport(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.ready = true
	m.refresh(true)
	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancels.cancelAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.showHelp {
			m.showHelp = false
			m.refresh(false)
			return m, nil
		}
		if n := m.cancels.cancelAll(); n > 0 {
			m.status = fmt.Sprintf(msgCancelled, n)
			m.logger.Info("requests cancelled", zap.Int("count", n))
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusNext):
		cmd := m.cycleFocus(1)
		return m, cmd

	case key.Matches(msg, m.keys.FocusPrev):
		cmd := m.cycleFocus(-1)
		return m, cmd

	case key.Matches(msg, m.keys.Mode):
		m.toggleMode()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCatalog(true)

	case key.Matches(msg, m.keys.Sheet):
		cmd := m.beginSheet()
		return m, cmd

	case key.Matches(msg, m.keys.Preview):
		cmd := m.previewCmd()
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		cmd := m.saveCmd()
		return m, cmd

	case key.Matches(msg, m.keys.CloseQuiz):
		m.ctrl.CloseQuiz()
		m.syncBoard()
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	switch m.focus {
	case FocusSelector:
		return m.handleSelectorKey(msg)
	case FocusQuiz:
		return m.handleQuizKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs a slash command or hands the input to the controller. The
// input is kept when the submission is rejected so it can be re-sent once a
// document is chosen.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if cmd, ok := m.runCommand(text); ok {
		m.input.Reset()
		m.refresh(true)
		return m, cmd
	}

	p, err := m.ctrl.Submit(text)
	if err != nil {
		m.refresh(true)
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	m.syncBoard()
	cmd := tea.Batch(m.askCmd(*p), m.spinner.Start())
	m.refresh(true)
	return m, cmd
}

func (m Model) handleSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.ctrl.Selector()
	snap := sel.Snapshot()
	if !snap.ListShown {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = view.ClampCursor(m.cursor-1, len(snap.Items))
	case key.Matches(msg, m.keys.Down):
		m.cursor = view.ClampCursor(m.cursor+1, len(snap.Items))
	case key.Matches(msg, m.keys.Toggle):
		if c := view.ClampCursor(m.cursor, len(snap.Items)); c >= 0 {
			sel.Toggle(snap.Items[c].ID)
		}
	default:
		var cmd tea.Cmd
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			sel.SetFilter(m.filter.Value())
			m.cursor = 0
		}
		m.refresh(false)
		return m, cmd
	}
	m.refresh(false)
	return m, nil
}

func (m Model) handleQuizKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.ctrl.Board()
	if b == nil {
		cmd := m.setFocus(FocusInput)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.question > 0 {
			m.question--
		}
	case key.Matches(msg, m.keys.Down):
		if m.question < b.Len()-1 {
			m.question++
		}
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		k := view.ChoiceIndex(string(msg.Runes))
		if k < 0 {
			return m, nil
		}
		if _, ok := m.ctrl.Answer(m.question, k); ok {
			m.question = nextOpen(b.Unanswered(), m.question)
		}
	default:
		return m, nil
	}
	m.refresh(false)
	return m, nil
}

// nextOpen returns the index of the first open question after current,
// wrapping around. open holds 1-based numbers. With nothing open current is
// returned.
func nextOpen(open []int, current int) int {
	if len(open) == 0 {
		return current
	}
	for _, n := range open {
		if n-1 > current {
			return n - 1
		}
	}
	return open[0] - 1
}

// =============================================================================
// FOCUS AND MODE
// =============================================================================

func (m *Model) cycleFocus(step int) tea.Cmd {
	order := []Focus{FocusInput, FocusSelector}
	if m.ctrl.Board() != nil {
		order = append(order, FocusQuiz)
	}
	i := 0
	for j, f := range order {
		if f == m.focus {
			i = j
		}
	}
	i = (i + step + len(order)) % len(order)
	return m.setFocus(order[i])
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	m.input.Blur()
	m.filter.Blur()

	var cmd tea.Cmd
	switch f {
	case FocusInput:
		cmd = m.input.Focus()
	case FocusSelector:
		cmd = m.filter.Focus()
	}
	m.refresh(false)
	return cmd
}

func (m *Model) toggleMode() {
	sel := m.ctrl.Selector()
	if sel.Mode() == selector.ModeGlobal {
		sel.SetMode(selector.ModePrecis)
	} else {
		sel.SetMode(selector.ModeGlobal)
	}
	m.logger.Debug("selector mode", zap.Stringer("mode", sel.Mode()))
	m.refresh(false)
}

// beginSheet starts a revision sheet request if the preconditions hold.
func (m *Model) beginSheet() tea.Cmd {
	req, err := m.ctrl.BeginSheet()
	if err != nil {
		if errors.Is(err, dispatch.ErrSheetBusy) {
			m.status = msgSheetBusy
		}
		m.refresh(true)
		return nil
	}
	m.refresh(true)
	return tea.Batch(m.sheetCmd(*req), m.spinner.Start())
}

// =============================================================================
// ASYNC RESULTS
// =============================================================================

func (m Model) handleCatalog(msg CatalogMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("catalog unavailable", zap.Bool("refresh", msg.Refresh), zap.Error(msg.Err))
		if msg.Refresh {
			m.ctrl.Log().AppendNotice(model.NoticeWarning, msgCatalogFailed)
		} else {
			m.status = msgCatalogFailed
		}
		m.refresh(true)
		return m, nil
	}

	m.ctrl.Selector().SetCatalog(msg.Documents)
	m.cursor = view.ClampCursor(m.cursor, len(m.ctrl.Selector().Visible()))
	if msg.Refresh {
		m.ctrl.Log().AppendNotice(model.NoticeInfo, fmt.Sprintf(msgCatalogLoaded, len(msg.Documents)))
	}
	m.refresh(true)
	return m, nil
}

func (m Model) handleResponse(msg ResponseMsg) (tea.Model, tea.Cmd) {
	m.cancels.done(msg.Outcome.Pending.ID)
	m.ctrl.Resolve(msg.Outcome)
	m.syncBoard()
	m.syncSpinner()
	m.refresh(true)
	return m, nil
}

func (m Model) handleSheet(msg SheetMsg) (tea.Model, tea.Cmd) {
	m.cancels.done(msg.Outcome.Request.ID)
	m.ctrl.FinishSheet(msg.Outcome)
	m.syncSpinner()
	m.refresh(true)
	return m, nil
}

func (m Model) handleSheetAction(msg SheetActionMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("sheet action failed", zap.Int("action", int(msg.Action)), zap.Error(msg.Err))
		m.ctrl.Log().AppendNotice(model.NoticeError, msgSheetFailed+msg.Err.Error())
		m.refresh(true)
		return m, nil
	}

	switch msg.Action {
	case SheetSaved:
		m.logger.Info("sheet saved", zap.String("path", msg.Path))
		m.ctrl.Log().AppendNotice(model.NoticeInfo, msgSheetSaved+msg.Path)
	default:
		m.status = msgSheetOpened + msg.Path
	}
	m.refresh(true)
	return m, nil
}

func (m Model) handleExport(msg ExportMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, export.ErrEmptyTranscript):
		m.ctrl.Log().AppendNotice(model.NoticeWarning, msgExportEmpty)
	case msg.Err != nil:
		m.logger.Warn("export failed", zap.Error(msg.Err))
		m.ctrl.Log().AppendNotice(model.NoticeError, msgExportFailed+msg.Err.Error())
	default:
		m.logger.Info("transcript exported", zap.String("path", msg.Path))
		m.ctrl.Log().AppendNotice(model.NoticeInfo, msgExported+msg.Path)
	}
	m.refresh(true)
	return m, nil
}

// syncBoard resets the quiz cursor when a new quiz replaced the board, and
// moves focus away from a closed quiz.
func (m *Model) syncBoard() {
	b := m.ctrl.Board()
	if b == m.board {
		return
	}
	m.board = b
	m.question = 0
	if b == nil && m.focus == FocusQuiz {
		m.setFocus(FocusInput)
	}
}

func (m *Model) syncSpinner() {
	if m.ctrl.InFlight() == 0 && !m.ctrl.SheetBusy() {
		m.spinner.Stop()
	}
}
