package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - lime green accent theme.
// Single accent color for a professional, distinctive look.
const (
	ColorLime     = "154" // Primary accent (#AFFF00) - bright lime green
	ColorLimeDim  = "106" // Dimmed lime for inactive/borders
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds all UI styles for TUI rendering.
type Styles struct {
	// Text styles
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Active  lipgloss.Style

	// Panel/layout styles
	Border    lipgloss.Style
	Panel     lipgloss.Style
	Sparkline lipgloss.Style
	Label     lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// DefaultStyles returns styled components for TUI mode.
func DefaultStyles() Styles {
	return Styles{
		Header:  fg(ColorLime).Bold(true),
		Success: fg(ColorLime),
		Warning: fg(ColorYellow),
		Error:   fg(ColorRed),
		Info:    fg(ColorWhite),
		Dim:     fg(ColorDarkGray),
		Active:  fg(ColorLime).Bold(true),

		Border: fg(ColorDarkGray),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
		Sparkline: fg(ColorLime),
		Label:     fg(ColorGray),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:    plain,
		Success:   plain,
		Warning:   plain,
		Error:     plain,
		Info:      plain,
		Dim:       plain,
		Active:    plain,
		Border:    plain,
		Panel:     plain,
		Sparkline: plain,
		Label:     plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// LevelStyle returns the text style for a toast level.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "success":
		return s.Success
	case "warning":
		return s.Warning
	case "error":
		return s.Error
	default:
		return s.Info
	}
}
