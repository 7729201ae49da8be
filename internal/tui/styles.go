package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle renders screen headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	// DimStyle renders hints and footers.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	// ErrorStyle renders failure and alert messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	// BannerStyle renders the transient notification banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	// LabelStyle renders form field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	// BoxStyle frames a screen's content.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4B5563")).
			Padding(1, 2)
)
