// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the polly packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - FoldContains: Unicode case-insensitive substring match
//   - SanitizeFilename: turn arbitrary labels into safe file names
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(doc, 32)
//	if util.FoldContains(label, query) { ... }
//	_ = util.AtomicWriteFile(path, data, 0600)
package util
