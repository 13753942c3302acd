package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/restclient/internal/ui/theme"
)

// Modal is a yes/no confirm dialog.
type Modal struct {
	Visible   bool
	Title     string
	Message   string
	onConfirm tea.Msg
	focusOK   bool
	theme     theme.Theme
}

// NewModal creates a new modal dialog.
func NewModal(t theme.Theme) Modal {
	return Modal{theme: t, focusOK: true}
}

// Show displays the modal. onConfirm is emitted when the user accepts.
func (m *Modal) Show(title, message string, onConfirm tea.Msg) {
	m.Visible = true
	m.Title = title
	m.Message = message
	m.onConfirm = onConfirm
	m.focusOK = true
}

// Update handles keys while the modal is visible: y accepts, n or esc
// cancels, tab moves focus and enter picks the focused button.
func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		return m.close(true)
	case "n", "N", "esc":
		return m.close(false)
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focusOK = !m.focusOK
	case "enter":
		return m.close(m.focusOK)
	}
	return m, nil
}

func (m Modal) close(confirm bool) (Modal, tea.Cmd) {
	m.Visible = false
	if !confirm || m.onConfirm == nil {
		return m, nil
	}
	out := m.onConfirm
	return m, func() tea.Msg { return out }
}

// View renders the modal dialog.
func (m Modal) View() string {
	if !m.Visible {
		return ""
	}

	boxWidth := 44

	titleStyle := lipgloss.NewStyle().
		Foreground(m.theme.Text).
		Bold(true).
		Width(boxWidth - 4).
		Align(lipgloss.Center)

	messageStyle := lipgloss.NewStyle().
		Foreground(m.theme.Subtext).
		Width(boxWidth - 4).
		Align(lipgloss.Center)

	okStyle := lipgloss.NewStyle().Padding(0, 3)
	cancelStyle := lipgloss.NewStyle().Padding(0, 3)
	if m.focusOK {
		okStyle = okStyle.Background(m.theme.Red).Foreground(m.theme.Surface).Bold(true)
		cancelStyle = cancelStyle.Background(m.theme.Surface).Foreground(m.theme.Subtext)
	} else {
		okStyle = okStyle.Background(m.theme.Surface).Foreground(m.theme.Subtext)
		cancelStyle = cancelStyle.Background(m.theme.Accent).Foreground(m.theme.Surface).Bold(true)
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		okStyle.Render("Yes (y)"),
		"  ",
		cancelStyle.Render("No (n)"),
	)
	buttonsRow := lipgloss.NewStyle().
		Width(boxWidth - 4).
		Align(lipgloss.Center).
		Render(buttons)

	content := titleStyle.Render(m.Title) + "\n\n" +
		messageStyle.Render(m.Message) + "\n\n" +
		buttonsRow

	return lipgloss.NewStyle().
		Width(boxWidth).
		Foreground(m.theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Accent).
		Padding(1, 2).
		Render(content)
}
