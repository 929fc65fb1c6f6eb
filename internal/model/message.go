// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown above a message.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Vous"
	case RoleAssistant:
		return "Polly"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one message of the transcript. Turns are values: once appended to
// a Log they are never modified.
type Turn struct {
	ID        string    `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"-"`
}

// NewTurn creates a Turn with a fresh ID and the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        newID("turn"),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// NOTICE TYPE
// =============================================================================

// NoticeKind classifies display-only log lines.
type NoticeKind string

const (
	// NoticeLoading is the transient placeholder shown while a request is pending.
	NoticeLoading NoticeKind = "loading"
	// NoticeWarning reports a rejected action (no document selected, ...).
	NoticeWarning NoticeKind = "warning"
	// NoticeError reports a failed request.
	NoticeError NoticeKind = "error"
	// NoticeInfo carries confirmations such as "QCM généré".
	NoticeInfo NoticeKind = "info"
)

// Notice is a line of the conversation view that is not part of the history
// sent to the backend.
type Notice struct {
	ID        string
	Kind      NoticeKind
	Text      string
	Timestamp time.Time
}

// NewNotice creates a Notice with a fresh ID.
func NewNotice(kind NoticeKind, text string) Notice {
	return Notice{
		ID:        newID("note"),
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// EntryKind tells which half of an Entry is populated.
type EntryKind int

const (
	EntryTurn EntryKind = iota
	EntryNotice
)

// Entry is one element of the rendered transcript: either a Turn or a Notice.
type Entry struct {
	Kind   EntryKind
	Turn   Turn
	Notice Notice
}

// ID returns the identifier of whichever value the entry carries.
func (e Entry) ID() string {
	if e.Kind == EntryTurn {
		return e.Turn.ID
	}
	return e.Notice.ID
}

// IsTurn reports whether the entry is part of the conversation history.
func (e Entry) IsTurn() bool {
	return e.Kind == EntryTurn
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
