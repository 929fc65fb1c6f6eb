// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view turns session state into plain view descriptions.
//
// Every function here is pure: it reads immutable inputs (log entries, a
// selector snapshot, a quiz board) and returns structs that say what to show,
// not how. The TUI in internal/ui and the REPL in internal/cli render these
// descriptions to strings.
package view
