// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components renders polly's view descriptions to terminal strings.
//
// Each renderer takes a description from internal/view plus a width and a
// styles.Theme, and returns a string ready for a bubbletea View. None of them
// keep state except Spinner and Markdown.
package components
