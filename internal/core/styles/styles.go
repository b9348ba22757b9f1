// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/petpix/internal/core/notice"
)

// Palette colors (tokyo-night).
var (
	ColorPrimary    = lipgloss.Color("#7aa2f7")
	ColorSecondary  = lipgloss.Color("#7dcfff")
	ColorForeground = lipgloss.Color("#c0caf5")
	ColorMuted      = lipgloss.Color("#565f89")
	ColorBackground = lipgloss.Color("#1a1b26")
	ColorSurface    = lipgloss.Color("#3b4261")
	ColorSuccess    = lipgloss.Color("#9ece6a")
	ColorWarning    = lipgloss.Color("#e0af68")
	ColorError      = lipgloss.Color("#f7768e")
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)
	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Notice styles, shared by the printer and TUI toasts.
	NoticeSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	NoticeErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	NoticeWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	ToastBaseStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	ToastSuccessStyle = ToastBaseStyle.BorderForeground(ColorSuccess).Foreground(ColorSuccess)
	ToastErrorStyle   = ToastBaseStyle.BorderForeground(ColorError).Foreground(ColorError)
	ToastWarningStyle = ToastBaseStyle.BorderForeground(ColorWarning).Foreground(ColorWarning)

	// TUI styles.
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
	LabelSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorPrimary).
				Foreground(ColorBackground).
				Bold(true)
	LabelNormalStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorSurface).
				Foreground(ColorMuted)
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSurface).
			Padding(0, 1)
	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Bold(true)
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Underline(true)
)

// NoticeIcon returns the icon for a notice kind.
func NoticeIcon(k notice.Kind) string {
	switch k {
	case notice.KindSuccess:
		return IconNotifySuccess
	case notice.KindError:
		return IconNotifyError
	default:
		return IconNotifyWarning
	}
}

// NoticeStyle returns the inline text style for a notice kind.
func NoticeStyle(k notice.Kind) lipgloss.Style {
	switch k {
	case notice.KindSuccess:
		return NoticeSuccessStyle
	case notice.KindError:
		return NoticeErrorStyle
	default:
		return NoticeWarningStyle
	}
}

// ToastStyle returns the bordered toast style for a notice kind.
func ToastStyle(k notice.Kind) lipgloss.Style {
	switch k {
	case notice.KindSuccess:
		return ToastSuccessStyle
	case notice.KindError:
		return ToastErrorStyle
	default:
		return ToastWarningStyle
	}
}

// FormTheme returns the huh theme used for interactive prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorSuccess)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	return t
}
