// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch decides what to do with each user input and applies the
// backend's answer to the session.
//
// The Controller owns the session state: the document selector, the
// conversation log, the current quiz board and the last revision sheet.
// It is driven from a single goroutine. Network work is split out so a UI
// loop can run it elsewhere:
//
//	p, err := ctrl.Submit(text)       // UI goroutine: checks, log updates
//	out := dispatch.Execute(ctx, b, *p) // any goroutine: network only
//	ctrl.Resolve(out)                 // UI goroutine: apply result
//
// Run chains the three for line-oriented front-ends.
//
// # State machine
//
//	IDLE -> AWAITING_SELECTION (nothing selected) -> IDLE
//	IDLE -> SUBMITTING -> RENDER_ANSWER | RENDER_QUIZ | RENDER_ERROR -> IDLE
//
// Revision sheets run beside the chat flow, guarded by a busy flag that is
// always cleared when the request finishes.
package dispatch
