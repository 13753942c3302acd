package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/restclient/internal/ui/theme"
)

// DefaultToastDuration is how long a toast stays up when no duration is given.
const DefaultToastDuration = 2 * time.Second

// toastDismissMsg dismisses the toast shown with the same sequence number.
type toastDismissMsg struct{ seq int }

// Toast is an auto-dismiss notification.
type Toast struct {
	Visible bool
	text    string
	isError bool
	seq     int
	theme   theme.Theme
}

// NewToast creates a new toast component.
func NewToast(t theme.Theme) Toast {
	return Toast{theme: t}
}

// Show displays a toast message and returns a Cmd for auto-dismiss. A newer
// toast is not dismissed by the timer of an older one.
func (m *Toast) Show(text string, isError bool, d time.Duration) tea.Cmd {
	if d <= 0 {
		d = DefaultToastDuration
	}
	m.Visible = true
	m.text = text
	m.isError = isError
	m.seq++
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastDismissMsg{seq: seq}
	})
}

// Text returns the message currently shown.
func (m Toast) Text() string { return m.text }

// IsError reports whether the toast is an error.
func (m Toast) IsError() bool { return m.isError }

// Update implements tea.Model.
func (m Toast) Update(msg tea.Msg) (Toast, tea.Cmd) {
	if d, ok := msg.(toastDismissMsg); ok && d.seq == m.seq {
		m.Visible = false
		m.text = ""
	}
	return m, nil
}

// View renders the toast notification.
func (m Toast) View() string {
	if !m.Visible || m.text == "" {
		return ""
	}

	fg := m.theme.Green
	if m.isError {
		fg = m.theme.Red
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Bold(true).
		Padding(0, 1).
		Render(m.text)
}
