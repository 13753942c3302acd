package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/ui/theme"
)

// StatusBar is a full-width bottom bar: response facts on the left, key
// hints on the right.
type StatusBar struct {
	resp    *protocol.Response
	count   int
	hints   string
	message string
	width   int
	theme   theme.Theme
}

// NewStatusBar creates a new status bar.
func NewStatusBar(t theme.Theme) StatusBar {
	return StatusBar{theme: t}
}

// SetResponse sets the response summarized on the left. nil clears it.
func (m *StatusBar) SetResponse(r *protocol.Response) { m.resp = r }

// SetCount sets the number of entries shown.
func (m *StatusBar) SetCount(n int) { m.count = n }

// SetHints sets the key hints shown on the right.
func (m *StatusBar) SetHints(h string) { m.hints = h }

// SetMessage replaces the left section with text until cleared.
func (m *StatusBar) SetMessage(text string) { m.message = text }

// SetWidth sets the available width.
func (m *StatusBar) SetWidth(w int) { m.width = w }

// View renders the status bar.
func (m StatusBar) View() string {
	base := lipgloss.NewStyle().Background(m.theme.Surface)

	var leftParts []string
	switch {
	case m.message != "":
		leftParts = append(leftParts, base.Foreground(m.theme.Text).Render(m.message))
	case m.resp != nil:
		label := m.resp.StatusText
		if m.resp.Status != protocol.StatusTransportFailure {
			label = strconv.Itoa(m.resp.Status) + " " + m.resp.StatusText
		}
		leftParts = append(leftParts,
			base.Foreground(m.theme.StatusColor(m.resp.Status)).Bold(true).Render(strings.TrimSpace(label)),
			base.Foreground(m.theme.Subtext).Render(strconv.FormatInt(m.resp.Time, 10)+" ms"),
		)
		if !m.resp.Failed() {
			leftParts = append(leftParts,
				base.Foreground(m.theme.Subtext).Render(humanize.IBytes(uint64(max(m.resp.Size, 0)))))
		}
	default:
		leftParts = append(leftParts,
			base.Foreground(m.theme.Subtext).Render(strconv.Itoa(m.count)+" entries"))
	}
	left := strings.Join(leftParts, base.Foreground(m.theme.Muted).Render(" │ "))
	right := base.Foreground(m.theme.Muted).Render(m.hints)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + left + base.Render(strings.Repeat(" ", gap)) + right + " "
	return base.Width(m.width).Render(line)
}
