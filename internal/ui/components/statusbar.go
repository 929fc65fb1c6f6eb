// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/util"
	"github.com/jeranaias/polly-tui/internal/view"
)

// Shortcut is one key hint of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders left-aligned info and right-aligned shortcuts on one line.
func StatusBar(t *styles.Theme, width int, info string, shortcuts []Shortcut) string {
	hints := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		hints = append(hints, t.ShortcutKey.Render(s.Key)+" "+t.ShortcutDesc.Render(s.Desc))
	}
	right := strings.Join(hints, "  ")

	inner := width - 2
	if inner < 0 {
		inner = 0
	}
	leftWidth := inner - lipgloss.Width(right) - 1
	if leftWidth < 8 {
		right = ""
		leftWidth = inner
	}
	left := util.PadRight(util.TruncateWidth(info, leftWidth), leftWidth)

	line := left
	if right != "" {
		line += " " + right
	}
	return t.StatusBar.Width(width).Render(line)
}

// SheetButton renders the revision sheet trigger and the ready sheet, if any.
func SheetButton(t *styles.Theme, s view.Sheet, frame string) string {
	var b strings.Builder
	if s.Enabled {
		b.WriteString(t.Button.Render("📄 Fiche de révision (ctrl+f)"))
	} else {
		label := "📄 Génération..."
		if frame != "" {
			label = frame + " " + label
		}
		b.WriteString(t.ButtonDisabled.Render(label))
	}
	if s.Ready {
		b.WriteString("\n")
		b.WriteString(t.Info.Render(s.Name + " (" + s.Size + ")"))
		b.WriteString("\n")
		b.WriteString(t.ShortcutKey.Render("ctrl+o") + " " + t.ShortcutDesc.Render(s.Preview) + "  ")
		b.WriteString(t.ShortcutKey.Render("ctrl+s") + " " + t.ShortcutDesc.Render(s.Download))
	}
	return b.String()
}
