package theme

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/restclient/internal/protocol"
)

// Styles holds pre-computed Lip Gloss styles for the current theme.
type Styles struct {
	theme    Theme
	renderer *lipgloss.Renderer

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	URL      lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Hint     lipgloss.Style

	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles creates a Styles set from a Theme for the default renderer.
func NewStyles(t Theme) Styles {
	return NewStylesFor(lipgloss.DefaultRenderer(), t)
}

// NewStylesFor creates a Styles set bound to renderer r.
func NewStylesFor(r *lipgloss.Renderer, t Theme) Styles {
	return Styles{
		theme:    t,
		renderer: r,

		Title:    r.NewStyle().Foreground(t.Text).Bold(true),
		Subtitle: r.NewStyle().Foreground(t.Subtext),
		Normal:   r.NewStyle().Foreground(t.Text),
		Muted:    r.NewStyle().Foreground(t.Muted),
		Bold:     r.NewStyle().Foreground(t.Text).Bold(true),
		Error:    r.NewStyle().Foreground(t.Red),
		Success:  r.NewStyle().Foreground(t.Green),
		Warning:  r.NewStyle().Foreground(t.Amber),
		URL:      r.NewStyle().Foreground(t.Blue).Underline(true),
		Key:      r.NewStyle().Foreground(t.Accent),
		Value:    r.NewStyle().Foreground(t.Text),
		Hint:     r.NewStyle().Foreground(t.Muted).Italic(true),

		StatusBar: r.NewStyle().
			Background(t.Surface).
			Foreground(t.Text).
			Padding(0, 1),
		Selected: r.NewStyle().
			Background(t.Surface).
			Foreground(t.Text).
			Bold(true),
		Border: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1),
	}
}

// Theme returns the theme the styles were built from.
func (s Styles) Theme() Theme { return s.theme }

// MethodBadge renders a method in its color, padded to the widest method.
func (s Styles) MethodBadge(method protocol.Method) string {
	return s.renderer.NewStyle().
		Foreground(s.theme.MethodColor(method)).
		Bold(true).
		Width(6).
		Render(string(method))
}

// StatusBadge renders a status code in the color of its class.
func (s Styles) StatusBadge(code int, text string) string {
	label := text
	if code != protocol.StatusTransportFailure {
		label = strconv.Itoa(code)
		if text != "" {
			label += " " + text
		}
	}
	return s.renderer.NewStyle().
		Foreground(s.theme.StatusColor(code)).
		Bold(true).
		Render(label)
}

// Renderer returns the renderer the styles are bound to.
func (s Styles) Renderer() *lipgloss.Renderer { return s.renderer }
