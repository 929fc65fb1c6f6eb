// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/util"
	"github.com/jeranaias/polly-tui/internal/view"
)

// SelectorPanel renders the document selector. filterLine is the rendered
// search box (a textinput view), shown only in PRECIS mode.
func SelectorPanel(t *styles.Theme, v view.Selector, filterLine string, width, maxRows int, focused bool) string {
	inner := width - 4
	if inner < 12 {
		inner = 12
	}

	var b strings.Builder
	b.WriteString(t.PanelTitle.Render("📚 Cours"))
	b.WriteString("\n")

	global, precis := t.ModeInactive, t.ModeInactive
	if v.GlobalActive {
		global = t.ModeActive
	} else {
		precis = t.ModeActive
	}
	b.WriteString(global.Render("Global") + " " + precis.Render("Précis"))
	b.WriteString("\n")

	if v.ListShown {
		b.WriteString(filterLine)
		b.WriteString("\n")
		b.WriteString(selectorRows(t, v, inner, maxRows))
	}

	status := t.StatusOK
	if v.Warning {
		status = t.StatusWarning
	}
	b.WriteString("\n")
	b.WriteString(status.Render(Wrap(v.Status, inner)))

	panel := t.Panel
	if focused {
		panel = t.PanelFocused
	}
	return panel.Width(width - 2).Render(b.String())
}

func selectorRows(t *styles.Theme, v view.Selector, width, maxRows int) string {
	if v.Empty {
		return t.HeaderMuted.Render("Aucun document disponible")
	}
	if len(v.Items) == 0 {
		return t.HeaderMuted.Render("Aucun résultat")
	}

	start, end := window(cursorOf(v.Items), len(v.Items), maxRows)
	rows := make([]string, 0, end-start+1)
	for _, it := range v.Items[start:end] {
		box := "[ ]"
		style := t.Item
		if it.Chosen {
			box = "[x]"
			style = t.ItemChosen
		}
		line := util.TruncateWidth(box+" "+it.Label, width)
		line = style.Render(line)
		if it.Cursor {
			line = t.ItemCursor.Render(line)
		}
		rows = append(rows, line)
	}
	if v.Hidden > 0 || start > 0 || end < len(v.Items) {
		rows = append(rows, t.HeaderMuted.Render(fmt.Sprintf("%d/%d affichés", end-start, len(v.Items)+v.Hidden)))
	}
	return strings.Join(rows, "\n")
}

func cursorOf(items []view.SelectorItem) int {
	for i, it := range items {
		if it.Cursor {
			return i
		}
	}
	return 0
}

// window returns the [start, end) slice of n rows that keeps cursor visible
// within max rows. max <= 0 shows everything.
func window(cursor, n, max int) (int, int) {
	if max <= 0 || n <= max {
		return 0, n
	}
	start := cursor - max/2
	if start < 0 {
		start = 0
	}
	if start+max > n {
		start = n - max
	}
	return start, start + max
}
