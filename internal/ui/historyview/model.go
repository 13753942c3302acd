// Package historyview is the interactive terminal browser over the history
// ledger.
package historyview

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/export"
	"github.com/sadopc/restclient/internal/output"
	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/ui/components"
	"github.com/sadopc/restclient/internal/ui/theme"
)

const (
	listHints   = "enter open  r resend  / filter  d delete  C clear  c copy  y curl  q quit"
	detailHints = "esc back  r resend  c copy  y curl  q quit"
)

// clearConfirmedMsg is emitted by the confirm dialog.
type clearConfirmedMsg struct{}

// ledgerChangedMsg reports the outcome of a ledger mutation.
type ledgerChangedMsg struct {
	note string
	err  error
}

// resentMsg carries the outcome of re-executing an entry.
type resentMsg struct {
	entry history.Entry
	err   error
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard overrides the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// WithExecutor enables re-sending entries with exec.
func WithExecutor(exec protocol.Executor) Option {
	return func(m *Model) { m.exec = exec }
}

// WithClock overrides the time used for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// Model browses, filters, deletes and clears ledger entries.
type Model struct {
	ctx    context.Context
	ledger *history.Ledger
	exec   protocol.Executor
	copy   func(string) error
	now    func() time.Time

	entries []history.Entry
	cursor  int

	filtering   bool
	filterInput textinput.Model

	detail   bool
	viewport viewport.Model

	modal  components.Modal
	toast  components.Toast
	status components.StatusBar

	width  int
	height int
	theme  theme.Theme
	styles theme.Styles
}

// New creates a browser over ledger.
func New(ctx context.Context, ledger *history.Ledger, t theme.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 128

	m := Model{
		ctx:         ctx,
		ledger:      ledger,
		copy:        clipboard.WriteAll,
		now:         time.Now,
		filterInput: ti,
		viewport:    viewport.New(0, 0),
		modal:       components.NewModal(t),
		toast:       components.NewToast(t),
		status:      components.NewStatusBar(t),
		theme:       t,
		styles:      theme.NewStyles(t),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Entries returns the entries currently listed.
func (m Model) Entries() []history.Entry { return m.entries }

// Current returns the entry under the cursor.
func (m Model) Current() (history.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return history.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-2)
		m.status.SetWidth(msg.Width)
		if m.detail {
			m.renderDetail()
		}
		return m, nil

	case clearConfirmedMsg:
		return m, m.clearCmd()

	case ledgerChangedMsg:
		m.detail = false
		m.refresh()
		if msg.err != nil {
			return m, m.toast.Show(msg.err.Error(), true, 3*time.Second)
		}
		return m, m.toast.Show(msg.note, false, 0)

	case resentMsg:
		m.refresh()
		m.cursor = 0
		if msg.err != nil {
			return m, m.toast.Show(msg.err.Error(), true, 3*time.Second)
		}
		if m.detail {
			m.renderDetail()
		}
		return m, m.toast.Show("Sent "+msg.entry.Name, false, 0)

	case tea.KeyMsg:
		if m.modal.Visible {
			var cmd tea.Cmd
			m.modal, cmd = m.modal.Update(msg)
			return m, cmd
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.toast, cmd = m.toast.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "C":
		if m.ledger.Len() == 0 {
			return m, nil
		}
		m.modal.Show("Clear history", fmt.Sprintf("Remove all %d entries?", m.ledger.Len()), clearConfirmedMsg{})
		return m, nil
	}

	if len(m.entries) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.entries) - 1
	case "enter", "l":
		m.detail = true
		m.renderDetail()
	case "d", "delete":
		e := m.entries[m.cursor]
		return m, m.removeCmd(e)
	case "c":
		return m, m.copyResponse()
	case "y":
		return m, m.copyCurl()
	case "r":
		return m, m.resendCmd()
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "h":
		m.detail = false
		return m, nil
	case "c":
		return m, m.copyResponse()
	case "y":
		return m, m.copyCurl()
	case "r":
		return m, m.resendCmd()
	case "d":
		if e, ok := m.Current(); ok {
			return m, m.removeCmd(e)
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filtering = false
		m.filterInput.Blur()
		if msg.String() == "esc" {
			m.filterInput.SetValue("")
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refresh()
	m.cursor = 0
	return m, cmd
}

// refresh reloads the visible entries from the ledger.
func (m *Model) refresh() {
	m.entries = m.ledger.Search(m.filterInput.Value())
	if m.cursor >= len(m.entries) {
		m.cursor = max(0, len(m.entries)-1)
	}
}

func (m *Model) renderDetail() {
	e, ok := m.Current()
	if !ok {
		m.detail = false
		return
	}
	var buf bytes.Buffer
	p := output.New(&buf, m.theme, true)
	p.SetClock(m.now)
	p.Entry(e)
	m.viewport.SetContent(buf.String())
	m.viewport.GotoTop()
}

func (m Model) removeCmd(e history.Entry) tea.Cmd {
	ctx, ledger := m.ctx, m.ledger
	return func() tea.Msg {
		return ledgerChangedMsg{note: "Deleted " + e.Name, err: ledger.Remove(ctx, e.ID)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	ctx, ledger := m.ctx, m.ledger
	return func() tea.Msg {
		return ledgerChangedMsg{note: "History cleared", err: ledger.Clear(ctx)}
	}
}

func (m Model) resendCmd() tea.Cmd {
	e, ok := m.Current()
	if !ok || m.exec == nil {
		return nil
	}
	ctx, ledger, exec := m.ctx, m.ledger, m.exec
	req := e.Config.Clone()
	return func() tea.Msg {
		resp := exec.Execute(ctx, req)
		entry, err := ledger.Record(ctx, req, &resp)
		return resentMsg{entry: entry, err: err}
	}
}

func (m *Model) copyResponse() tea.Cmd {
	e, ok := m.Current()
	if !ok || e.Response == nil {
		return m.toast.Show("Nothing to copy", true, 0)
	}
	return m.copyText(output.FormatBody(e.Response.Data), "Response copied")
}

func (m *Model) copyCurl() tea.Cmd {
	e, ok := m.Current()
	if !ok {
		return nil
	}
	return m.copyText(export.AsCurl(e.Config), "Copied as cURL")
}

func (m *Model) copyText(text, note string) tea.Cmd {
	if err := m.copy(text); err != nil {
		return m.toast.Show("Clipboard error: "+err.Error(), true, 3*time.Second)
	}
	return m.toast.Show(note, false, 0)
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if m.detail {
		body = m.viewport.View()
	} else {
		body = m.listView()
	}

	footer := m.footer()
	if m.height > 0 {
		body = fitHeight(body, m.height-lipgloss.Height(footer))
	}
	view := body + "\n" + footer

	if m.modal.Visible && m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modal.View())
	}
	if m.modal.Visible {
		return view + "\n" + m.modal.View()
	}
	return view
}

func (m Model) listView() string {
	title := m.styles.Title.Render("History")
	if q := m.filterInput.Value(); q != "" {
		title += m.styles.Muted.Render(fmt.Sprintf("  (%d matching %q)", len(m.entries), q))
	}
	lines := []string{title, ""}

	if len(m.entries) == 0 {
		empty := output.EmptyHistory
		if m.filterInput.Value() != "" {
			empty = "No matching entries"
		}
		lines = append(lines, m.styles.Muted.Render("  "+empty))
		return strings.Join(lines, "\n")
	}

	for i, e := range m.entries {
		lines = append(lines, m.renderEntry(e, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e history.Entry, isCursor bool) string {
	status := m.styles.Muted.Render("-")
	if e.Response != nil {
		status = m.styles.StatusBadge(e.Response.Status, "")
		if e.Response.Failed() {
			status = m.styles.StatusBadge(e.Response.Status, e.Response.StatusText)
		}
	}
	when := m.styles.Muted.Render(humanize.RelTime(e.Time(), m.now(), "ago", "from now"))

	marker := "  "
	if isCursor {
		marker = m.styles.Key.Render("> ")
	}
	name := m.styles.Normal.Render(e.Name)
	if isCursor {
		name = m.styles.Selected.Render(e.Name)
	}
	return marker + m.styles.MethodBadge(e.Config.Method) + " " + name + "  " + status + "  " + when
}

func (m Model) footer() string {
	var lines []string
	if m.toast.Visible {
		lines = append(lines, m.toast.View())
	}
	if m.filtering {
		lines = append(lines, m.filterInput.View())
	}

	sb := m.status
	sb.SetCount(len(m.entries))
	if m.detail {
		sb.SetHints(detailHints)
		if e, ok := m.Current(); ok {
			sb.SetResponse(e.Response)
		}
	} else {
		sb.SetHints(listHints)
	}
	lines = append(lines, sb.View())
	return strings.Join(lines, "\n")
}

// fitHeight truncates or pads content to the given height.
func fitHeight(content string, h int) string {
	if h < 1 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Run starts the browser full screen and blocks until the user quits.
func Run(ctx context.Context, ledger *history.Ledger, t theme.Theme, opts ...Option) error {
	p := tea.NewProgram(New(ctx, ledger, t, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
