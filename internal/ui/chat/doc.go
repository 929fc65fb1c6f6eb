// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive terminal client.
//
// The Model is a bubbletea program around a dispatch.Controller. Update is
// the only goroutine that touches the controller; network calls run in
// tea.Cmd goroutines and come back as messages.
//
// # Layout
//
//   - a side panel with the document selector and the revision sheet
//     button (stacked above the conversation on narrow terminals)
//   - the conversation, with the current quiz drawn after the last message
//   - a multi-line input and a status bar
//
// # Focus
//
// Tab cycles focus between the input, the selector and the quiz. Global
// shortcuts (ctrl+f, ctrl+g, ctrl+r, ...) work from anywhere.
package chat
