// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/polly-tui/internal/export"
	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/selector"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. It may change the model and
// returns the follow-up command, if any.
type CommandHandler func(m *Model, args []string) tea.Cmd

// commandHandlers maps command names to their handlers. Filled in init so
// /help can list the registry.
var commandHandlers map[string]CommandHandler

func init() {
	commandHandlers = map[string]CommandHandler{
		"help":    handleHelpCommand,
		"aide":    handleHelpCommand,
		"docs":    handleDocsCommand,
		"cours":   handleDocsCommand,
		"global":  handleGlobalCommand,
		"precis":  handlePrecisCommand,
		"précis":  handlePrecisCommand,
		"export":  handleExportCommand,
		"fiche":   handleSheetCommand,
		"sheet":   handleSheetCommand,
		"quit":    handleQuitCommand,
		"quitter": handleQuitCommand,
		"exit":    handleQuitCommand,
	}
}

// runCommand executes text if it names a known slash command. Anything else,
// including an unknown "/word", is left to the dispatcher as a question.
func (m *Model) runCommand(text string) (tea.Cmd, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return nil, false
	}
	handler, ok := commandHandlers[strings.ToLower(fields[0])]
	if !ok {
		return nil, false
	}
	return handler(m, fields[1:]), true
}

const helpText = `Commandes :
  /docs [refresh]      liste les cours (refresh : recharge depuis le serveur)
  /global, /precis     change le mode de sélection
  /fiche               génère la fiche de révision des cours choisis
  /export [md|json]    exporte la conversation
  /quit                quitte
Demandez un « QCM », un « quiz » ou un « test » pour vous entraîner. F1 affiche les raccourcis.`

func handleHelpCommand(m *Model, _ []string) tea.Cmd {
	m.ctrl.Log().AppendNotice(model.NoticeInfo, helpText)
	return nil
}

func handleDocsCommand(m *Model, args []string) tea.Cmd {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "refresh", "recharger":
			return m.loadCatalog(true)
		}
	}

	docs := m.ctrl.Selector().Catalog()
	if len(docs) == 0 {
		m.ctrl.Log().AppendNotice(model.NoticeWarning, "⚠️ Aucun cours disponible. Essayez /docs refresh.")
		return nil
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(msgCatalogLoaded, len(docs)))
	for _, id := range docs {
		mark := " "
		if m.ctrl.Selector().IsChosen(id) {
			mark = "x"
		}
		b.WriteString(fmt.Sprintf("\n  [%s] %s", mark, selector.Label(id)))
	}
	m.ctrl.Log().AppendNotice(model.NoticeInfo, b.String())
	return nil
}

func handleGlobalCommand(m *Model, _ []string) tea.Cmd {
	m.ctrl.Selector().SetMode(selector.ModeGlobal)
	return nil
}

func handlePrecisCommand(m *Model, _ []string) tea.Cmd {
	m.ctrl.Selector().SetMode(selector.ModePrecis)
	return nil
}

func handleExportCommand(m *Model, args []string) tea.Cmd {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		m.ctrl.Log().AppendNotice(model.NoticeError, msgExportFailed+err.Error())
		return nil
	}

	t := export.NewTranscript(m.ctrl.Log().History(), m.ctrl.Selector().Selection())
	opts := &export.Options{
		OutputDir:         m.opts.ExportDir,
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
	return func() tea.Msg {
		path, err := export.ExportToFile(t, export.NewExporter(format, opts), opts)
		return ExportMsg{Path: path, Err: err}
	}
}

func handleSheetCommand(m *Model, _ []string) tea.Cmd {
	return m.beginSheet()
}

func handleQuitCommand(m *Model, _ []string) tea.Cmd {
	m.cancels.cancelAll()
	return tea.Quit
}
