// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "Vous", RoleUser.DisplayName())
	assert.Equal(t, "Polly", RoleAssistant.DisplayName())
	assert.Equal(t, "other", Role("other").DisplayName())
	assert.False(t, Role("system").Valid())
}

// =============================================================================
// LOG TESTS
// =============================================================================

func TestLog_AppendKeepsOrder(t *testing.T) {
	log := NewLog(0)
	log.AppendTurn(RoleUser, "q1")
	log.AppendTurn(RoleAssistant, "a1")
	log.AppendTurn(RoleUser, "q2")

	history := log.History()
	require.Len(t, history, 3)
	assert.Equal(t, "q1", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, "q2", history[2].Content)
	assert.True(t, strings.HasPrefix(history[0].ID, "turn_"))
	assert.NotEqual(t, history[0].ID, history[2].ID)
}

func TestLog_NoticesAreNotHistory(t *testing.T) {
	log := NewLog(0)
	log.AppendTurn(RoleUser, "question")
	n := log.AppendNotice(NoticeLoading, "Chargement...")

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, 1, log.TurnCount())
	assert.Len(t, log.History(), 1)

	entries := log.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, n.ID, last.ID())
	assert.False(t, last.IsTurn())
}

func TestLog_RemoveNotice(t *testing.T) {
	log := NewLog(0)
	turn := log.AppendTurn(RoleUser, "q")
	n := log.AppendNotice(NoticeLoading, "...")

	assert.True(t, log.RemoveNotice(n.ID))
	assert.False(t, log.RemoveNotice(n.ID), "second removal is a no-op")
	assert.False(t, log.RemoveNotice(turn.ID), "turns cannot be removed")
	assert.Equal(t, 1, log.Len())
}

func TestLog_ReplaceNoticeKeepsPosition(t *testing.T) {
	log := NewLog(0)
	log.AppendTurn(RoleUser, "q")
	loading := log.AppendNotice(NoticeLoading, "...")
	log.AppendNotice(NoticeWarning, "later")

	replaced := log.ReplaceNotice(loading.ID, NoticeError, "boom")

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, replaced.ID, entries[1].ID())
	assert.Equal(t, NoticeError, entries[1].Notice.Kind)
	assert.Equal(t, "later", entries[2].Notice.Text)
}

func TestLog_ReplaceUnknownNoticeAppends(t *testing.T) {
	log := NewLog(0)
	log.AppendTurn(RoleUser, "q")

	log.ReplaceNotice("note_missing", NoticeError, "boom")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[1].Notice.Text)
}

func TestLog_EntriesIsACopy(t *testing.T) {
	log := NewLog(0)
	log.AppendTurn(RoleUser, "q")

	entries := log.Entries()
	entries[0].Turn.Content = "mutated"

	assert.Equal(t, "q", log.History()[0].Content)
}

func TestLog_Cap(t *testing.T) {
	tests := []struct {
		name      string
		maxTurns  int
		appends   int
		wantTurns int
		wantFirst string
	}{
		{"unbounded", 0, 30, 30, "m0"},
		{"negative is unbounded", -5, 4, 4, "m0"},
		{"under cap", 20, 10, 10, "m0"},
		{"at cap", 20, 20, 20, "m0"},
		{"over cap drops oldest", 20, 25, 20, "m5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewLog(tt.maxTurns)
			for i := 0; i < tt.appends; i++ {
				role := RoleUser
				if i%2 == 1 {
					role = RoleAssistant
				}
				log.AppendTurn(role, "m"+strconv.Itoa(i))
			}

			history := log.History()
			assert.Equal(t, tt.wantTurns, log.TurnCount())
			require.Len(t, history, tt.wantTurns)
			assert.Equal(t, tt.wantFirst, history[0].Content)
		})
	}
}

func TestLog_CapDropsNoticesBeforeEvictedTurn(t *testing.T) {
	log := NewLog(2)
	log.AppendNotice(NoticeWarning, "old warning")
	log.AppendTurn(RoleUser, "q1")
	log.AppendNotice(NoticeInfo, "between")
	log.AppendTurn(RoleAssistant, "a1")
	log.AppendTurn(RoleUser, "q2")

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "between", entries[0].Notice.Text)
	assert.Equal(t, "a1", entries[1].Turn.Content)
	assert.Equal(t, "q2", entries[2].Turn.Content)
}

func TestLog_CapKeepsLoadingNotices(t *testing.T) {
	log := NewLog(2)
	log.AppendTurn(RoleUser, "a")
	pendingA := log.AppendNotice(NoticeLoading, "loading a")
	log.AppendTurn(RoleUser, "b")
	log.AppendNotice(NoticeLoading, "loading b")
	log.AppendTurn(RoleUser, "c")

	assert.Equal(t, 2, log.TurnCount())
	assert.Equal(t, []string{"b", "c"}, contents(log.History()))
	assert.GreaterOrEqual(t, log.indexOfNotice(pendingA.ID), 0, "placeholder of a pending request survives eviction")

	resolved := log.ReplaceNotice(pendingA.ID, NoticeError, "failed")
	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, resolved.ID, entries[0].Notice.ID, "replaced in place")
}

func contents(turns []Turn) []string {
	out := make([]string, 0, len(turns))
	for _, turn := range turns {
		out = append(out, turn.Content)
	}
	return out
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestSelection_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		kind    SelectionKind
		ids     []string
		display string
	}{
		{"zero value", Selection{}, SelectionNone, nil, "none"},
		{"none", NoSelection(), SelectionNone, nil, "none"},
		{"global", GlobalSelection(), SelectionGlobal, nil, "global"},
		{"one", DocumentsSelection("droit.pdf"), SelectionDocuments, []string{"droit.pdf"}, "documents[droit.pdf]"},
		{"dedup and trim", DocumentsSelection(" a ", "b", "a", ""), SelectionDocuments, []string{"a", "b"}, "documents[a, b]"},
		{"empty normalizes to none", DocumentsSelection(), SelectionNone, nil, "none"},
		{"blank normalizes to none", DocumentsSelection("  ", ""), SelectionNone, nil, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.sel.Kind())
			assert.Equal(t, tt.ids, tt.sel.IDs())
			assert.Equal(t, tt.display, tt.sel.String())
		})
	}
}

func TestSelection_IDsIsACopy(t *testing.T) {
	sel := DocumentsSelection("a", "b")
	ids := sel.IDs()
	ids[0] = "z"
	assert.Equal(t, []string{"a", "b"}, sel.IDs())
}

func TestQuizQuestion_Answerable(t *testing.T) {
	assert.True(t, QuizQuestion{Choices: []string{"a"}}.Answerable())
	assert.False(t, QuizQuestion{}.Answerable())
}
