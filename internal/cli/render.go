// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/ui/components"
	"github.com/jeranaias/polly-tui/internal/view"
)

// printer writes the conversation to a line-oriented terminal. Each log
// entry is printed once.
type printer struct {
	out   io.Writer
	md    *components.Markdown
	width int
	// echoUser prints user turns too. The REPL leaves them out since the
	// user just typed them.
	echoUser bool
	printed  map[string]bool
}

func newPrinter(out io.Writer, s *Session, echoUser bool) *printer {
	markdown := s.Config.UI.Markdown && ColorsEnabled()
	return &printer{
		out:      out,
		md:       components.NewMarkdown(s.Theme.MarkdownStyle(), markdown),
		width:    textWidth(),
		echoUser: echoUser,
		printed:  make(map[string]bool),
	}
}

// flush prints the log entries not printed yet. Loading placeholders are
// transient and never printed.
func (p *printer) flush(log *model.Log) {
	for _, m := range view.Messages(log.Entries()) {
		if p.printed[m.ID] || m.Kind == view.MessageLoading {
			continue
		}
		p.printed[m.ID] = true
		p.message(m)
	}
}

// skip marks the current log content as already shown.
func (p *printer) skip(log *model.Log) {
	for _, e := range log.Entries() {
		p.printed[e.ID()] = true
	}
}

func (p *printer) message(m view.Message) {
	switch m.Kind {
	case view.MessageUser:
		if !p.echoUser {
			return
		}
		fmt.Fprintf(p.out, "%s %s\n%s\n\n", PromptStyle.Render(m.Author), DimStyle.Render(m.Time.Format("15:04")), plain(components.Wrap(m.Text, p.width)))
	case view.MessageAssistant:
		fmt.Fprintf(p.out, "%s %s\n%s\n\n", AuthorStyle.Render("🦜 "+m.Author), DimStyle.Render(m.Time.Format("15:04")), plain(p.md.Render(m.Text, p.width)))
	case view.MessageWarning:
		fmt.Fprintln(p.out, WarningStyle.Render(m.Text))
	case view.MessageError:
		fmt.Fprintln(p.out, ErrorStyle.Render(m.Text))
	default:
		fmt.Fprintln(p.out, InfoStyle.Render(m.Text))
	}
}

// quiz prints the whole board.
func (p *printer) quiz(b *quiz.Board) {
	q := view.QuizPanel(b, -1)
	if q == nil {
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", TitleStyle.Render("📝 "+q.Title))
	fmt.Fprintln(p.out, RenderSeparator(p.width))
	for _, question := range q.Questions {
		p.question(question)
	}
	fmt.Fprintln(p.out, DimStyle.Render(q.Progress()))
}

// question prints one question block with its grading state.
func (p *printer) question(q view.Question) {
	fmt.Fprintf(p.out, "\n%d. %s\n", q.Number, q.Text)
	if q.Error != "" {
		fmt.Fprintln(p.out, "   "+ErrorStyle.Render(q.Error))
		return
	}
	for _, c := range q.Choices {
		label := fmt.Sprintf("%s) %s", c.Key, c.Label)
		switch c.State {
		case view.ChoiceCorrect:
			fmt.Fprintln(p.out, "   "+SuccessStyle.Render("✔ "+label))
		case view.ChoiceIncorrect:
			fmt.Fprintln(p.out, "   "+ErrorStyle.Render("✘ "+label))
		case view.ChoiceDisabled:
			fmt.Fprintln(p.out, "   "+DimStyle.Render("  "+label))
		default:
			fmt.Fprintln(p.out, "     "+label)
		}
	}
	if q.Feedback != "" {
		fmt.Fprintln(p.out, "   "+q.Feedback)
	}
	if q.Explanation != "" {
		fmt.Fprintln(p.out, "   "+DimStyle.Render(q.Explanation))
	}
}

// plain drops the trailing padding lipgloss adds to wrapped lines.
func plain(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
