// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMuted lipgloss.Style

	// ==========================================================================
	// CONVERSATION STYLES
	// ==========================================================================

	UserLabel       lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantLabel  lipgloss.Style
	AssistantBubble lipgloss.Style
	Loading         lipgloss.Style
	Warning         lipgloss.Style
	Error           lipgloss.Style
	Info            lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// SIDE PANEL STYLES
	// ==========================================================================

	Panel         lipgloss.Style
	PanelFocused  lipgloss.Style
	PanelTitle    lipgloss.Style
	ModeActive    lipgloss.Style
	ModeInactive  lipgloss.Style
	Item          lipgloss.Style
	ItemChosen    lipgloss.Style
	ItemCursor    lipgloss.Style
	StatusOK      lipgloss.Style
	StatusWarning lipgloss.Style

	// ==========================================================================
	// QUIZ STYLES
	// ==========================================================================

	QuizTitle      lipgloss.Style
	QuizQuestion   lipgloss.Style
	QuizCurrent    lipgloss.Style
	ChoiceOpen     lipgloss.Style
	ChoiceDisabled lipgloss.Style
	ChoiceCorrect  lipgloss.Style
	ChoiceWrong    lipgloss.Style
	Explanation    lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS BAR STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto" (detect).
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// MarkdownStyle returns the glamour standard style matching the background.
func (t *Theme) MarkdownStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderMuted = lipgloss.NewStyle().Foreground(TextMuted)

	// Conversation
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)
	t.Loading = lipgloss.NewStyle().Foreground(Amber).Italic(true)
	t.Warning = lipgloss.NewStyle().Foreground(WarningHighContrast).Bold(true)
	t.Error = lipgloss.NewStyle().Foreground(ErrorHighContrast).Bold(true)
	t.Info = lipgloss.NewStyle().Foreground(InfoHighContrast)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	// Side panel
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelFocused = t.Panel.Copy().BorderForeground(Purple)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.ModeActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)
	t.ModeInactive = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.Item = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ItemChosen = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ItemCursor = lipgloss.NewStyle().Background(SelectionBg)
	t.StatusOK = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatusWarning = lipgloss.NewStyle().Foreground(WarningHighContrast).Bold(true)

	// Quiz
	t.QuizTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple).Underline(true)
	t.QuizQuestion = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.QuizCurrent = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ChoiceOpen = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ChoiceDisabled = lipgloss.NewStyle().Foreground(TextMuted)
	t.ChoiceCorrect = lipgloss.NewStyle().Foreground(SuccessHighContrast).Bold(true)
	t.ChoiceWrong = lipgloss.NewStyle().Foreground(ErrorHighContrast).Bold(true)
	t.Explanation = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Input and status bar
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim)
	t.InputFocused = t.InputContainer.Copy().BorderForeground(Cyan)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)
	t.ButtonDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 80 {
		return LayoutNarrow
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	// LayoutNarrow stacks the side panel above the conversation.
	LayoutNarrow LayoutMode = iota // < 80 columns
	// LayoutWide shows the side panel next to the conversation.
	LayoutWide
)
