package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors adapt to the terminal background.
var (
	Primary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	Success = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	Warning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	Failure = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// Styles used by the CLI output.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	LabelStyle   = lipgloss.NewStyle().Foreground(Muted).Width(14)
	ValueStyle   = lipgloss.NewStyle()
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Failure).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	BoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Muted).Padding(0, 1)
)

// Initialize tells lipgloss which background the terminal has.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// InitializeFromEnv picks the theme from KUBEWIRE_THEME ("dark" or
// "light") and falls back to terminal detection.
func InitializeFromEnv() {
	switch os.Getenv("KUBEWIRE_THEME") {
	case "dark":
		Initialize(true)
	case "light":
		Initialize(false)
	default:
		Initialize(lipgloss.HasDarkBackground())
	}
}

// StatusStyle picks a style for an HTTP status code.
func StatusStyle(code int) lipgloss.Style {
	switch {
	case code >= 200 && code < 300:
		return SuccessStyle
	case code >= 400:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
