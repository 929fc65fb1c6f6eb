// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/polly-tui/internal/catalog"
	"github.com/jeranaias/polly-tui/internal/dispatch"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/sheet"
	"github.com/jeranaias/polly-tui/internal/ui/components"
	"github.com/jeranaias/polly-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus is the panel receiving unbound keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusSelector
	FocusQuiz
)

// String returns the focus name.
func (f Focus) String() string {
	switch f {
	case FocusSelector:
		return "selector"
	case FocusQuiz:
		return "quiz"
	default:
		return "input"
	}
}

// User-visible texts owned by the TUI.
const (
	msgCatalogFailed = "⚠️ Impossible de charger la liste des cours. Le mode global reste disponible."
	msgCatalogLoaded = "📚 %d cours disponibles."
	msgNoSheet       = "Aucune fiche de révision pour l'instant (ctrl+f pour en générer une)."
	msgSheetBusy     = "Une fiche de révision est déjà en cours de génération."
	msgSheetSaved    = "📥 Fiche enregistrée : "
	msgSheetOpened   = "Fiche ouverte : "
	msgSheetFailed   = "❌ Impossible d'ouvrir ou d'enregistrer la fiche : "
	msgExported      = "💾 Conversation exportée : "
	msgExportEmpty   = "⚠️ Rien à exporter : la conversation est vide."
	msgExportFailed  = "❌ Export impossible : "
	msgCancelled     = "%d requête(s) annulée(s)"
	inputPlaceholder = "Posez votre question... (demandez un QCM pour vous entraîner)"
)

// =============================================================================
// MODEL
// =============================================================================

// Options wires the Model to its collaborators.
type Options struct {
	Controller *dispatch.Controller
	Backend    dispatch.Backend
	// Catalog may be nil; the selector then stays empty.
	Catalog *catalog.Catalog
	Theme   *styles.Theme
	Logger  *zap.Logger

	// Server is shown in the header.
	Server       string
	DownloadsDir string
	ExportDir    string
	Markdown     bool
	// Timeout bounds each request. Zero means none.
	Timeout time.Duration
	// Open launches the viewer for a previewed sheet. Default: sheet.Open.
	Open func(path string) error
}

// Model is the bubbletea model of the client.
type Model struct {
	ctrl    *dispatch.Controller
	backend dispatch.Backend
	catalog *catalog.Catalog
	opts    Options
	logger  *zap.Logger

	theme    *styles.Theme
	keys     KeyMap
	help     help.Model
	input    textarea.Model
	filter   textinput.Model
	viewport viewport.Model
	spinner  components.Spinner
	markdown *components.Markdown

	// Shared across model copies.
	cancels *cancelManager

	focus    Focus
	cursor   int
	question int
	board    *quiz.Board
	showHelp bool
	status   string

	width      int
	height     int
	sideWidth  int
	sideHeight int
	ready      bool
}

// New creates the Model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Open == nil {
		opts.Open = sheet.Open
	}

	keys := DefaultKeyMap()

	input := textarea.New()
	input.Placeholder = inputPlaceholder
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.SetHeight(3)
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(keys.Newline.Keys()...))
	input.Focus()

	filter := textinput.New()
	filter.Placeholder = "Rechercher un cours..."
	filter.Prompt = "🔎 "
	filter.CharLimit = 80

	h := help.New()
	h.ShowAll = true

	return Model{
		ctrl:     opts.Controller,
		backend:  opts.Backend,
		catalog:  opts.Catalog,
		opts:     opts,
		logger:   opts.Logger.Named("tui"),
		theme:    opts.Theme,
		keys:     keys,
		help:     h,
		input:    input,
		filter:   filter,
		viewport: viewport.New(80, 20),
		spinner:  components.NewSpinner(),
		markdown: components.NewMarkdown(opts.Theme.MarkdownStyle(), opts.Markdown),
		cancels:  newCancelManager(),
	}
}

// Init loads the catalog and starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadCatalog(false))
}

// Status returns the transient status line.
func (m Model) Status() string {
	return m.status
}

// Controller returns the session controller.
func (m Model) Controller() *dispatch.Controller {
	return m.ctrl
}

// =============================================================================
// COMMANDS (ASYNC WORK)
// =============================================================================

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// recovered turns a panic in a request goroutine into an error so the
// outcome message is still delivered.
func recovered(logger *zap.Logger, id string, r any) error {
	logger.Error("request panicked", zap.String("request", id), zap.Any("panic", r))
	return fmt.Errorf("request %s panicked: %v", id, r)
}

// loadCatalog fetches the document list. refresh bypasses the cache.
func (m Model) loadCatalog(refresh bool) tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	c, timeout := m.catalog, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		var docs []string
		var err error
		if refresh {
			docs, err = c.Refresh(ctx)
		} else {
			docs, err = c.Documents(ctx)
		}
		return CatalogMsg{Documents: docs, Err: err, Refresh: refresh}
	}
}

// askCmd executes an accepted chat request.
func (m Model) askCmd(p dispatch.Pending) tea.Cmd {
	ctx := m.cancels.add(context.Background(), p.ID)
	b, timeout, logger := m.backend, m.opts.Timeout, m.logger
	return func() (msg tea.Msg) {
		out := dispatch.Outcome{Pending: p, Err: context.Canceled}
		defer func() {
			if r := recover(); r != nil {
				out.Err = recovered(logger, p.ID, r)
			}
			msg = ResponseMsg{Outcome: out}
		}()

		ctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		out = dispatch.Execute(ctx, b, p)
		return
	}
}

// sheetCmd executes an accepted revision sheet request. The outcome is
// always delivered so the trigger is re-enabled.
func (m Model) sheetCmd(req dispatch.SheetRequest) tea.Cmd {
	ctx := m.cancels.add(context.Background(), req.ID)
	b, timeout, logger := m.backend, m.opts.Timeout, m.logger
	return func() (msg tea.Msg) {
		out := dispatch.SheetOutcome{Request: req, Err: context.Canceled}
		defer func() {
			if r := recover(); r != nil {
				out.Err = recovered(logger, req.ID, r)
			}
			msg = SheetMsg{Outcome: out}
		}()

		ctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		out = dispatch.ExecuteSheet(ctx, b, req)
		return
	}
}

// previewCmd writes the transient copy of the sheet and opens it.
func (m *Model) previewCmd() tea.Cmd {
	res := m.ctrl.Sheet()
	if res == nil {
		m.status = msgNoSheet
		return nil
	}
	open := m.opts.Open
	return func() tea.Msg {
		path, err := res.Materialize("")
		if err == nil {
			err = open(path)
		}
		return SheetActionMsg{Action: SheetPreviewed, Path: path, Err: err}
	}
}

// saveCmd writes a durable copy of the sheet into the downloads directory.
func (m *Model) saveCmd() tea.Cmd {
	res := m.ctrl.Sheet()
	if res == nil {
		m.status = msgNoSheet
		return nil
	}
	dir := m.opts.DownloadsDir
	return func() tea.Msg {
		path, err := res.Save(dir)
		return SheetActionMsg{Action: SheetSaved, Path: path, Err: err}
	}
}
