// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/polly-tui/internal/ui/styles"
	"github.com/jeranaias/polly-tui/internal/view"
)

// Conversation renders the message list.
type Conversation struct {
	Theme    *styles.Theme
	Markdown *Markdown
	Spinner  Spinner
	// Timestamps shows HH:MM next to each author.
	Timestamps bool
}

// Render draws msgs for width columns. Answers go through Markdown, user
// input and notices are drawn literally.
func (c Conversation) Render(msgs []view.Message, width int) string {
	if len(msgs) == 0 {
		return c.Theme.HeaderMuted.Render(Wrap(EmptyConversation, width))
	}

	inner := width - 2
	if inner < 10 {
		inner = 10
	}

	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, c.message(m, inner))
	}
	return strings.Join(blocks, "\n\n")
}

// EmptyConversation is shown before the first question.
const EmptyConversation = "Bonjour ! Posez une question sur vos cours, ou demandez un QCM pour vous entraîner."

func (c Conversation) message(m view.Message, width int) string {
	t := c.Theme
	switch m.Kind {
	case view.MessageUser:
		return c.header(t.UserLabel.Render(m.Author), m) + "\n" +
			t.UserBubble.Render(Wrap(m.Text, width-2))
	case view.MessageAssistant:
		return c.header(t.AssistantLabel.Render(m.Author), m) + "\n" +
			t.AssistantBubble.Render(c.Markdown.Render(m.Text, width-2))
	case view.MessageLoading:
		text := m.Text
		if frame := c.Spinner.Frame(); frame != "" {
			text = frame + " " + text
			if e := c.Spinner.Elapsed(); e >= 2*time.Second {
				text += " (" + formatElapsed(e) + ")"
			}
		}
		return t.Loading.Render(Wrap(text, width))
	case view.MessageWarning:
		return t.Warning.Render(Wrap(m.Text, width))
	case view.MessageError:
		return t.Error.Render(Wrap(m.Text, width))
	default:
		return t.Info.Render(Wrap(m.Text, width))
	}
}

func (c Conversation) header(label string, m view.Message) string {
	if !c.Timestamps || m.Time.IsZero() {
		return label
	}
	return label + " " + c.Theme.Timestamp.Render(m.Time.Format("15:04"))
}
