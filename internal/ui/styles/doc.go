// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the polly TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The "ui.theme" setting can force either side.

# Color System (colors.go)

  - Purple - Polly's answers, selections
  - Cyan - Brand color, the user's questions
  - Emerald - correct quiz answers, ready sheets
  - Amber - warnings, loading placeholders
  - Rose - errors, wrong quiz answers

# Theme (theme.go)

Theme bundles the lipgloss styles for every panel: header, conversation,
document selector, quiz panel, input and status bar. It also picks the
glamour style matching the background.
*/
package styles
