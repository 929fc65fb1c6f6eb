// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// Log is the ordered transcript of a session. Turns are appended in
// chronological order and never reordered or edited. Notices may be removed
// or replaced in place, which is how the loading placeholder disappears.
//
// A Log is not safe for concurrent use; it is owned by the controller
// goroutine.
type Log struct {
	entries  []Entry
	turns    int
	maxTurns int
}

// NewLog creates an empty Log. maxTurns bounds the number of retained Turns;
// zero or a negative value keeps all of them.
func NewLog(maxTurns int) *Log {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &Log{maxTurns: maxTurns}
}

// AppendTurn appends a Turn and returns it.
func (l *Log) AppendTurn(role Role, content string) Turn {
	turn := NewTurn(role, content)
	l.entries = append(l.entries, Entry{Kind: EntryTurn, Turn: turn})
	l.turns++
	l.prune()
	return turn
}

// AppendNotice appends a display-only Notice and returns it.
func (l *Log) AppendNotice(kind NoticeKind, text string) Notice {
	notice := NewNotice(kind, text)
	l.entries = append(l.entries, Entry{Kind: EntryNotice, Notice: notice})
	return notice
}

// RemoveNotice deletes the Notice with the given ID. Turns cannot be removed.
// Returns false if no such Notice exists.
func (l *Log) RemoveNotice(id string) bool {
	i := l.indexOfNotice(id)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// ReplaceNotice swaps the Notice with the given ID for a new one at the same
// position. If the ID is unknown (already removed or pruned) the replacement
// is appended instead, so the user always sees it.
func (l *Log) ReplaceNotice(id string, kind NoticeKind, text string) Notice {
	notice := NewNotice(kind, text)
	if i := l.indexOfNotice(id); i >= 0 {
		l.entries[i] = Entry{Kind: EntryNotice, Notice: notice}
		return notice
	}
	l.entries = append(l.entries, Entry{Kind: EntryNotice, Notice: notice})
	return notice
}

// History returns the Turns in order. The slice is a copy.
func (l *Log) History() []Turn {
	history := make([]Turn, 0, l.turns)
	for _, e := range l.entries {
		if e.Kind == EntryTurn {
			history = append(history, e.Turn)
		}
	}
	return history
}

// Entries returns every entry in display order. The slice is a copy.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// TurnCount returns the number of retained Turns.
func (l *Log) TurnCount() int {
	return l.turns
}

// Len returns the number of entries (Turns and Notices).
func (l *Log) Len() int {
	return len(l.entries)
}

// MaxTurns returns the configured bound, 0 meaning unbounded.
func (l *Log) MaxTurns() int {
	return l.maxTurns
}

func (l *Log) indexOfNotice(id string) int {
	for i, e := range l.entries {
		if e.Kind == EntryNotice && e.Notice.ID == id {
			return i
		}
	}
	return -1
}

// prune evicts the oldest Turns once the bound is exceeded, together with
// the Notices that precede the newest evicted Turn. Loading notices stay:
// their request has not resolved yet.
func (l *Log) prune() {
	if l.maxTurns == 0 || l.turns <= l.maxTurns {
		return
	}
	excess := l.turns - l.maxTurns
	kept := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		switch {
		case excess == 0:
			kept = append(kept, e)
		case e.Kind == EntryTurn:
			excess--
		case e.Notice.Kind == NoticeLoading:
			kept = append(kept, e)
		}
	}
	l.entries = kept
	l.turns = l.maxTurns
}
