// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/view"
)

// QuizPanel renders the quiz. Every question is shown; the current one is
// highlighted and takes the choice keys.
func QuizPanel(t *styles.Theme, q *view.Quiz, width int, focused bool) string {
	if q == nil {
		return ""
	}
	inner := width - 4
	if inner < 16 {
		inner = 16
	}

	var b strings.Builder
	b.WriteString(t.QuizTitle.Render(q.Title))
	b.WriteString("  ")
	b.WriteString(t.HeaderMuted.Render(q.Progress()))

	for _, qu := range q.Questions {
		b.WriteString("\n\n")
		b.WriteString(question(t, qu, inner))
	}

	panel := t.Panel
	if focused {
		panel = t.PanelFocused
	}
	return panel.Width(width - 2).Render(b.String())
}

func question(t *styles.Theme, q view.Question, width int) string {
	title := fmt.Sprintf("Q%d. %s", q.Number, q.Text)
	style := t.QuizQuestion
	if q.Current {
		style = t.QuizCurrent
		title = "▸ " + title
	}

	lines := []string{style.Render(Wrap(title, width))}
	if q.Error != "" {
		lines = append(lines, t.Error.Render(q.Error))
		return strings.Join(lines, "\n")
	}

	for _, c := range q.Choices {
		lines = append(lines, choice(t, c, width))
	}
	if q.Locked {
		fb := t.ChoiceCorrect
		if strings.HasPrefix(q.Feedback, "❌") {
			fb = t.ChoiceWrong
		}
		lines = append(lines, fb.Render(q.Feedback))
		if q.Explanation != "" {
			lines = append(lines, t.Explanation.Render(Wrap(q.Explanation, width)))
		}
	}
	return strings.Join(lines, "\n")
}

func choice(t *styles.Theme, c view.Choice, width int) string {
	text := Wrap(fmt.Sprintf("  %s) %s", c.Key, c.Label), width)
	switch c.State {
	case view.ChoiceCorrect:
		return t.ChoiceCorrect.Render(text + " ✓")
	case view.ChoiceIncorrect:
		return t.ChoiceWrong.Render(text + " ✗")
	case view.ChoiceDisabled:
		return t.ChoiceDisabled.Render(text)
	default:
		return t.ChoiceOpen.Render(text)
	}
}
