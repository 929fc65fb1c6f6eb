// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings of the client.
type KeyMap struct {
	Submit    key.Binding
	Newline   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	Help      key.Binding

	// Conversation
	PageUp   key.Binding
	PageDown key.Binding

	// Selector and quiz
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Mode      key.Binding
	Refresh   key.Binding
	CloseQuiz key.Binding

	// Revision sheet
	Sheet   key.Binding
	Preview key.Binding
	Save    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Entrée", "envoyer"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("Alt+Entrée", "nouvelle ligne"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Échap", "annuler"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quitter"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "panneau suivant"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "panneau précédent"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "aide"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "remonter"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "descendre"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "précédent"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "suivant"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Entrée", "cocher"),
		),
		Mode: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "global/précis"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "recharger les cours"),
		),
		CloseQuiz: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "fermer le QCM"),
		),
		Sheet: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "fiche de révision"),
		),
		Preview: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "ouvrir la fiche"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "télécharger la fiche"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.FocusNext, k.Mode, k.Sheet, k.Help, k.Quit}
}

// FullHelp returns all bindings in two columns: typing and panels.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.Cancel, k.PageUp, k.PageDown, k.FocusNext, k.FocusPrev, k.Help, k.Quit},
		{k.Up, k.Down, k.Toggle, k.Mode, k.Refresh, k.CloseQuiz, k.Sheet, k.Preview, k.Save},
	}
}
