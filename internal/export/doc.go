// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the turns of the current session to a file.
//
// Exports are one-way: nothing here is read back, and the client keeps no
// state between sessions.
//
// # Formats
//
//   - Markdown: front matter plus one heading per turn
//   - JSON: the turns with role, content and timestamp
//
// # Usage
//
//	t := export.NewTranscript(log.History(), sel)
//	path, err := export.ExportToFile(t, export.NewMarkdownExporter(nil), opts)
package export
