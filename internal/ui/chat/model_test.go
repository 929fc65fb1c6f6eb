// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polly-tui/internal/backend"
	"github.com/jeranaias/polly-tui/internal/backendtest"
	"github.com/jeranaias/polly-tui/internal/catalog"
	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/view"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fixture struct {
	srv       *backendtest.Server
	downloads string
	exports   string
	opened    []string
}

func newTestModel(t *testing.T) (Model, *fixture) {
	t.Helper()
	f := &fixture{
		srv:       backendtest.New(t),
		downloads: t.TempDir(),
		exports:   t.TempDir(),
	}
	client := backend.NewClient(f.srv.URL)
	m := New(Options{
		Controller:   dispatch.NewController(selector.New(nil), model.NewLog(0), nil),
		Backend:      client,
		Catalog:      catalog.New(client, 0, nil),
		Theme:        styles.NewTheme("dark"),
		Server:       f.srv.URL,
		DownloadsDir: f.downloads,
		ExportDir:    f.exports,
		Markdown:     false,
		Open: func(path string) error {
			f.opened = append(f.opened, path)
			return nil
		},
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(m, m.Init())
	return m, f
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drive runs cmd and feeds the results the client cares about back into
// the model, until no work is left. Timer messages are dropped.
func drive(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case CatalogMsg, ResponseMsg, SheetMsg, SheetActionMsg, ExportMsg:
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return update(m, tea.KeyMsg{Type: k})
}

func typeRunes(m Model, s string) Model {
	for _, r := range s {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// send types text into the input and presses Enter.
func send(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	return press(m, tea.KeyEnter)
}

func notices(m Model, kind model.NoticeKind) []string {
	var out []string
	for _, e := range m.ctrl.Log().Entries() {
		if e.Kind == model.EntryNotice && e.Notice.Kind == kind {
			out = append(out, e.Notice.Text)
		}
	}
	return out
}

// =============================================================================
// CATALOG
// =============================================================================

func TestInit_LoadsCatalog(t *testing.T) {
	m, f := newTestModel(t)

	assert.Equal(t, backendtest.DefaultDocuments, m.ctrl.Selector().Catalog())
	assert.Equal(t, 1, f.srv.Count(backendtest.PathDocuments))
	assert.Zero(t, m.ctrl.Log().Len(), "the startup load stays out of the conversation")
}

func TestCatalog_FailureKeepsGlobalUsable(t *testing.T) {
	srv := backendtest.New(t)
	srv.Override(backendtest.PathDocuments, backendtest.Response{
		Status:      500,
		ContentType: "application/json",
		Body:        `{"error": "Erreur interne", "details": "disk"}`,
	})
	client := backend.NewClient(srv.URL)
	m := New(Options{
		Controller: dispatch.NewController(selector.New(nil), model.NewLog(0), nil),
		Backend:    client,
		Catalog:    catalog.New(client, 0, nil),
		Theme:      styles.NewTheme("dark"),
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(m, m.Init())

	assert.Empty(t, m.ctrl.Selector().Catalog())
	assert.Equal(t, msgCatalogFailed, m.Status())

	m, cmd := send(m, "Bonjour")
	m = drive(m, cmd)
	assert.Equal(t, 1, srv.Count(backendtest.PathAsk))
	assert.Equal(t, 2, m.ctrl.Log().TurnCount())
}

func TestRefresh_ReportsCount(t *testing.T) {
	m, f := newTestModel(t)
	f.srv.SetDocuments("Histoire.pdf")

	m, cmd := press(m, tea.KeyCtrlR)
	m = drive(m, cmd)

	assert.Equal(t, []string{"Histoire.pdf"}, m.ctrl.Selector().Catalog())
	assert.Equal(t, 2, f.srv.Count(backendtest.PathDocuments), "refresh bypasses the cache")
	assert.Contains(t, notices(m, model.NoticeInfo), "📚 1 cours disponibles.")
}

// =============================================================================
// CHAT
// =============================================================================

func TestSubmit_RoundTrip(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "Qu'est-ce que la Ve République ?")
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value(), "input cleared on acceptance")
	assert.Equal(t, 1, m.ctrl.InFlight())
	assert.Len(t, notices(m, model.NoticeLoading), 1)

	m = drive(m, cmd)

	assert.Zero(t, m.ctrl.InFlight())
	assert.Empty(t, m.spinner.Frame())
	assert.Empty(t, notices(m, model.NoticeLoading))
	history := m.ctrl.Log().History()
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, "Réponse à : Qu'est-ce que la Ve République ?", history[1].Content)

	req, ok := f.srv.Last(backendtest.PathAsk)
	require.True(t, ok)
	assert.JSONEq(t, `"GLOBAL"`, string(req.RawDocument))
	assert.Zero(t, m.cancels.len(), "finished requests release their context")
}

func TestSubmit_NoSelectionKeepsInput(t *testing.T) {
	m, f := newTestModel(t)
	m.ctrl.Selector().SetMode(selector.ModePrecis)

	m, cmd := send(m, "Explique le fédéralisme")

	assert.Nil(t, cmd)
	assert.Equal(t, "Explique le fédéralisme", m.input.Value())
	assert.Equal(t, []string{dispatch.MsgNoSelection}, notices(m, model.NoticeWarning))
	assert.Zero(t, f.srv.Count(backendtest.PathAsk))
}

func TestSubmit_EmptyInputIgnored(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "   ")

	assert.Nil(t, cmd)
	assert.Zero(t, m.ctrl.Log().Len())
	assert.Zero(t, f.srv.Count(backendtest.PathAsk))
}

func TestNewline_DoesNotSubmit(t *testing.T) {
	m, f := newTestModel(t)
	m.input.SetValue("ligne un")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})

	assert.Contains(t, m.input.Value(), "\n")
	assert.Zero(t, m.ctrl.Log().Len())
	assert.Zero(t, f.srv.Count(backendtest.PathAsk))
}

func TestEsc_CancelsInFlight(t *testing.T) {
	m, f := newTestModel(t)
	f.srv.Block()

	m, cmd := send(m, "Une question lente")
	require.Equal(t, 1, m.cancels.len())

	m, _ = press(m, tea.KeyEsc)
	assert.Equal(t, "1 requête(s) annulée(s)", m.Status())

	m = drive(m, cmd)
	assert.Equal(t, []string{dispatch.MsgCancelled}, notices(m, model.NoticeError))
	assert.Zero(t, m.ctrl.InFlight())
	assert.Equal(t, 1, m.ctrl.Log().TurnCount(), "no assistant turn for a cancelled request")
}

// =============================================================================
// QUIZ
// =============================================================================

func TestQuiz_AnswerWithKeys(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := send(m, "Fais-moi un QCM sur la Constitution")
	m = drive(m, cmd)
	require.NotNil(t, m.ctrl.Board())
	assert.Equal(t, 1, f.srv.Count(backendtest.PathQuiz))
	assert.Zero(t, f.srv.Count(backendtest.PathAsk))

	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyTab)
	require.Equal(t, FocusQuiz, m.focus)

	m = typeRunes(m, "b")
	fb := m.ctrl.Board().Feedback(0)
	assert.Equal(t, 1, fb.Chosen)
	assert.Equal(t, quiz.Correct, fb.Outcome)
	assert.Equal(t, 1, m.question, "moves to the next open question")

	m = typeRunes(m, "a")
	assert.Equal(t, quiz.Incorrect, m.ctrl.Board().Feedback(1).Outcome)

	m = typeRunes(m, "b")
	assert.Equal(t, 0, m.ctrl.Board().Feedback(1).Chosen, "a locked question ignores later picks")

	m, _ = press(m, tea.KeyUp)
	assert.Equal(t, 0, m.question)
	assert.Equal(t, "2/2 répondues", view.QuizPanel(m.ctrl.Board(), m.question).Progress())
}

func TestQuiz_CloseReturnsFocus(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := send(m, "quiz")
	m = drive(m, cmd)
	m, _ = press(m, tea.KeyShiftTab)
	require.Equal(t, FocusQuiz, m.focus)

	m, _ = press(m, tea.KeyCtrlX)

	assert.Nil(t, m.ctrl.Board())
	assert.Equal(t, FocusInput, m.focus)
}

func TestNextOpen(t *testing.T) {
	tests := []struct {
		name    string
		open    []int
		current int
		want    int
	}{
		{"next after current", []int{2, 3}, 0, 1},
		{"wraps around", []int{1}, 2, 0},
		{"nothing open", nil, 2, 2},
		{"skips answered", []int{1, 4}, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextOpen(tt.open, tt.current))
		})
	}
}

// =============================================================================
// SELECTOR
// =============================================================================

func TestSelector_KeysAndFilter(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(m, tea.KeyCtrlG)
	require.Equal(t, selector.ModePrecis, m.ctrl.Selector().Mode())

	m, _ = press(m, tea.KeyTab)
	require.Equal(t, FocusSelector, m.focus)

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyEnter)
	assert.Equal(t, []string{backendtest.DefaultDocuments[1]}, m.ctrl.Selector().Chosen())

	m = typeRunes(m, "relations")
	assert.Equal(t, "relations", m.ctrl.Selector().Filter())
	visible := m.ctrl.Selector().Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, backendtest.DefaultDocuments[2], visible[0].ID)

	m, _ = press(m, tea.KeyEnter)
	assert.ElementsMatch(t,
		[]string{backendtest.DefaultDocuments[1], backendtest.DefaultDocuments[2]},
		m.ctrl.Selector().Chosen(),
		"filtering hides documents without unchoosing them")

	m, _ = press(m, tea.KeyCtrlG)
	assert.True(t, m.ctrl.Selector().Selection().IsGlobal())
}

// =============================================================================
// REVISION SHEET
// =============================================================================

func TestSheet_GlobalRejected(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := press(m, tea.KeyCtrlF)

	assert.Nil(t, cmd)
	assert.Equal(t, []string{dispatch.MsgSheetNeedsDocs}, notices(m, model.NoticeWarning))
	assert.Zero(t, f.srv.Count(backendtest.PathSheet))
}

func TestSheet_GeneratePreviewSave(t *testing.T) {
	m, f := newTestModel(t)
	m.ctrl.Selector().SetMode(selector.ModePrecis)
	m.ctrl.Selector().Toggle(backendtest.DefaultDocuments[2])

	m, cmd := press(m, tea.KeyCtrlF)
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.SheetBusy())

	m, again := press(m, tea.KeyCtrlF)
	assert.Nil(t, again)
	assert.Equal(t, msgSheetBusy, m.Status())

	m = drive(m, cmd)
	assert.False(t, m.ctrl.SheetBusy())
	assert.Equal(t, 1, f.srv.Count(backendtest.PathSheet))
	require.NotNil(t, m.ctrl.Sheet())
	res := m.ctrl.Sheet()
	t.Cleanup(func() { _ = res.Release() })

	m, cmd = press(m, tea.KeyCtrlO)
	m = drive(m, cmd)
	require.Len(t, f.opened, 1)
	assert.FileExists(t, f.opened[0])
	assert.True(t, strings.HasPrefix(m.Status(), msgSheetOpened))

	m, cmd = press(m, tea.KeyCtrlS)
	m = drive(m, cmd)
	saved := filepath.Join(f.downloads, m.ctrl.Sheet().Name)
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, backendtest.SheetBytes, data)
	assert.Contains(t, notices(m, model.NoticeInfo), msgSheetSaved+saved)
}

func TestSheet_ActionsWithoutSheet(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := press(m, tea.KeyCtrlS)
	assert.Nil(t, cmd)
	assert.Equal(t, msgNoSheet, m.Status())

	_, cmd = press(m, tea.KeyCtrlO)
	assert.Nil(t, cmd)
	assert.Empty(t, f.opened)
}

// =============================================================================
// VIEW
// =============================================================================

func TestView_Layouts(t *testing.T) {
	for _, width := range []int{120, 60} {
		m, _ := newTestModel(t)
		m, _ = update(m, tea.WindowSizeMsg{Width: width, Height: 30})
		m, cmd := send(m, "Bonjour")
		m = drive(m, cmd)

		out := m.View()
		assert.Contains(t, out, "Polly")
		assert.Contains(t, out, "Cours")
		assert.Contains(t, out, "Réponse à : Bonjour")
	}
}

func TestView_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(m, tea.KeyF1)
	assert.Contains(t, m.View(), "nouvelle ligne")

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, m.showHelp)
}

func TestView_BeforeResize(t *testing.T) {
	m := New(Options{Controller: dispatch.NewController(selector.New(nil), model.NewLog(0), nil)})
	assert.Equal(t, "Initialisation...", m.View())
}
