// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette of the sync view.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Muted:   lipgloss.Color("#6C7086"),
		Success: lipgloss.Color("#A6E3A1"),
		Warning: lipgloss.Color("#F9E2AF"),
		Error:   lipgloss.Color("#F38BA8"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title heads the view.
	Title lipgloss.Style

	// Spinner colours the activity indicator.
	Spinner lipgloss.Style

	// Done marks completed checkpoints.
	Done lipgloss.Style

	// Current is the checkpoint in progress.
	Current lipgloss.Style

	// Success, Warning and Error colour the run summary.
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Help is the key hint line.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme:   theme,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Spinner: lipgloss.NewStyle().Foreground(theme.Primary),
		Done:    lipgloss.NewStyle().Foreground(theme.Muted),
		Current: lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Help:    lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
