// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/polly-tui/internal/model"
	"github.com/jeranaias/polly-tui/internal/quiz"
	"github.com/jeranaias/polly-tui/internal/selector"
	"github.com/jeranaias/polly-tui/internal/sheet"
)

// =============================================================================
// CONVERSATION
// =============================================================================

// MessageKind selects how a message is drawn.
type MessageKind int

const (
	MessageUser MessageKind = iota
	MessageAssistant
	MessageLoading
	MessageWarning
	MessageError
	MessageInfo
)

// Message is one rendered line of the conversation.
type Message struct {
	ID     string
	Kind   MessageKind
	Author string
	Text   string
	// Rich marks markdown content. Only assistant answers are rich; user
	// input and notices are shown literally.
	Rich bool
	Time time.Time
}

// Messages describes the conversation in log order.
func Messages(entries []model.Entry) []Message {
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		if e.IsTurn() {
			m := Message{
				ID:     e.Turn.ID,
				Author: e.Turn.Role.DisplayName(),
				Text:   e.Turn.Content,
				Time:   e.Turn.Timestamp,
			}
			if e.Turn.Role == model.RoleAssistant {
				m.Kind = MessageAssistant
				m.Rich = true
			} else {
				m.Kind = MessageUser
			}
			out = append(out, m)
			continue
		}

		m := Message{
			ID:     e.Notice.ID,
			Author: model.RoleAssistant.DisplayName(),
			Text:   e.Notice.Text,
			Time:   e.Notice.Timestamp,
		}
		switch e.Notice.Kind {
		case model.NoticeLoading:
			m.Kind = MessageLoading
		case model.NoticeWarning:
			m.Kind = MessageWarning
		case model.NoticeError:
			m.Kind = MessageError
		default:
			m.Kind = MessageInfo
		}
		out = append(out, m)
	}
	return out
}

// =============================================================================
// DOCUMENT SELECTOR
// =============================================================================

// Selector describes the document selector panel.
type Selector struct {
	GlobalActive bool
	ListShown    bool
	Filter       string
	Items        []SelectorItem
	// Hidden counts catalog entries excluded by the filter.
	Hidden  int
	Status  string
	Warning bool
	// Empty is set when the catalog has no documents at all.
	Empty bool
}

// SelectorItem is one document row.
type SelectorItem struct {
	ID     string
	Label  string
	Chosen bool
	Cursor bool
}

// SelectorPanel describes snap with the cursor on visible row cursor.
// Out-of-range cursors are clamped.
func SelectorPanel(snap selector.Snapshot, cursor int) Selector {
	v := Selector{
		GlobalActive: snap.Mode == selector.ModeGlobal,
		ListShown:    snap.ListShown,
		Filter:       snap.Filter,
		Status:       snap.Status.Text,
		Warning:      snap.Status.Warning,
		Empty:        snap.Total == 0,
	}
	if !snap.ListShown {
		return v
	}

	cursor = ClampCursor(cursor, len(snap.Items))
	v.Items = make([]SelectorItem, len(snap.Items))
	for i, it := range snap.Items {
		v.Items[i] = SelectorItem{ID: it.ID, Label: it.Label, Chosen: it.Chosen, Cursor: i == cursor}
	}
	v.Hidden = snap.Total - len(snap.Items)
	return v
}

// ClampCursor keeps cursor inside [0, n). It returns -1 when n is 0.
func ClampCursor(cursor, n int) int {
	switch {
	case n == 0:
		return -1
	case cursor < 0:
		return 0
	case cursor >= n:
		return n - 1
	}
	return cursor
}

// =============================================================================
// QUIZ
// =============================================================================

// ChoiceState is how one choice is drawn.
type ChoiceState int

const (
	// ChoiceOpen can still be picked.
	ChoiceOpen ChoiceState = iota
	// ChoiceDisabled belongs to a locked question and was not picked.
	ChoiceDisabled
	ChoiceCorrect
	ChoiceIncorrect
)

// Quiz describes the quiz panel.
type Quiz struct {
	Title     string
	Questions []Question
	Answered  int
	Total     int
	// Open lists unanswered question numbers.
	Open []int
}

// Question is one question block.
type Question struct {
	Number      int
	Text        string
	Choices     []Choice
	Locked      bool
	Current     bool
	Feedback    string
	Explanation string
	// Error replaces the choices when the question has none.
	Error string
}

// Choice is one selectable answer.
type Choice struct {
	Index int
	Key   string
	Label string
	State ChoiceState
}

// MsgMissingChoices is shown for a question without choices.
const MsgMissingChoices = "Erreur : choix manquants"

// QuizPanel describes b with question current highlighted. A nil board
// yields nil.
func QuizPanel(b *quiz.Board, current int) *Quiz {
	if b == nil {
		return nil
	}
	v := &Quiz{
		Title:    b.Title(),
		Total:    b.Len(),
		Answered: b.Answered(),
		Open:     b.Unanswered(),
	}
	v.Questions = make([]Question, b.Len())
	for i := range v.Questions {
		v.Questions[i] = question(b, i, i == current)
	}
	return v
}

func question(b *quiz.Board, i int, current bool) Question {
	q := b.Question(i)
	fb := b.Feedback(i)
	v := Question{
		Number:  i + 1,
		Text:    q.Question,
		Locked:  fb.Locked(),
		Current: current,
	}
	if !q.Answerable() {
		v.Error = MsgMissingChoices
		return v
	}
	if v.Locked {
		v.Feedback = fb.Message()
		v.Explanation = fb.Explanation
	}

	v.Choices = make([]Choice, len(q.Choices))
	for k, label := range q.Choices {
		c := Choice{Index: k, Key: ChoiceKey(k), Label: label}
		switch {
		case !v.Locked:
			c.State = ChoiceOpen
		case k != fb.Chosen:
			c.State = ChoiceDisabled
		case fb.Outcome == quiz.Correct:
			c.State = ChoiceCorrect
		default:
			c.State = ChoiceIncorrect
		}
		v.Choices[k] = c
	}
	return v
}

// ChoiceKey returns the letter used to pick choice k: "a", "b", ...
func ChoiceKey(k int) string {
	if k >= 0 && k < 26 {
		return string(rune('a' + k))
	}
	return fmt.Sprint(k + 1)
}

// ChoiceIndex parses a key produced by ChoiceKey. It returns -1 when key is
// not a choice.
func ChoiceIndex(key string) int {
	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		return int(key[0] - 'a')
	}
	var n int
	if _, err := fmt.Sscan(key, &n); err == nil && n > 0 {
		return n - 1
	}
	return -1
}

// Progress summarises the quiz for a footer: "2/5 répondues".
func (q *Quiz) Progress() string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d répondues", q.Answered, q.Total)
}

// =============================================================================
// REVISION SHEET
// =============================================================================

// Sheet describes the revision sheet affordance.
type Sheet struct {
	// Enabled is false while a request is in flight.
	Enabled bool
	Busy    bool
	Ready   bool
	Name    string
	Size    string
	// Preview and Download are the two actions offered on a ready sheet.
	// Both point at the same resource.
	Preview  string
	Download string
}

// SheetPanel describes the sheet trigger and the last result.
func SheetPanel(busy bool, res *sheet.Resource) Sheet {
	v := Sheet{Enabled: !busy, Busy: busy}
	if res == nil {
		return v
	}
	v.Ready = true
	v.Name = res.Name
	v.Size = res.HumanSize()
	v.Preview = "👁 Prévisualiser"
	v.Download = "⬇️ Télécharger"
	return v
}
