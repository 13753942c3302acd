// Package theme holds the colour palettes used by terminal output and the
// history browser.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/restclient/internal/protocol"
)

// Theme holds all colors for the application.
type Theme struct {
	Name string

	// Base colors
	Surface lipgloss.Color
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color

	// Badge colors, shared by methods and status classes
	Green  lipgloss.Color
	Blue   lipgloss.Color
	Amber  lipgloss.Color
	Purple lipgloss.Color
	Red    lipgloss.Color
	Grey   lipgloss.Color

	// Chroma style used to highlight response bodies
	Syntax string
}

// MethodColor returns the color for an HTTP method.
func (t Theme) MethodColor(method protocol.Method) lipgloss.Color {
	switch method {
	case protocol.MethodGet:
		return t.Green
	case protocol.MethodPost:
		return t.Blue
	case protocol.MethodPut:
		return t.Amber
	case protocol.MethodPatch:
		return t.Purple
	case protocol.MethodDelete:
		return t.Red
	default:
		return t.Text
	}
}

// StatusColor returns the color for an HTTP status code. Status 0 (no
// response) and anything below 200 are grey.
func (t Theme) StatusColor(code int) lipgloss.Color {
	switch {
	case code >= 200 && code < 300:
		return t.Green
	case code >= 300 && code < 400:
		return t.Blue
	case code >= 400 && code < 500:
		return t.Amber
	case code >= 500:
		return t.Red
	default:
		return t.Grey
	}
}
