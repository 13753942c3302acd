package historyview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/ui/theme"
)

var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLedger(t *testing.T, urls ...string) *history.Ledger {
	t.Helper()
	n := 0
	l, err := history.Open(context.Background(), history.NewMemoryStore(),
		history.WithClock(func() time.Time { return testNow }),
		history.WithIDFunc(func(time.Time) string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, u := range urls {
		resp := protocol.Response{Status: 200, StatusText: "OK", Data: map[string]any{"url": u}, Time: 5}
		if _, err := l.Record(context.Background(), protocol.Request{URL: u, Method: protocol.MethodGet}, &resp); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	return l
}

// send feeds msg to m and runs any resulting command once, feeding its
// message back in.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	out := cmd()
	switch out.(type) {
	case clearConfirmedMsg, ledgerChangedMsg, resentMsg:
		return send(t, m, out)
	}
	return m
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) write(s string) error {
	if c.err != nil {
		return c.err
	}
	c.text = s
	return nil
}

func newModel(t *testing.T, l *history.Ledger, opts ...Option) (Model, *fakeClipboard) {
	cb := &fakeClipboard{}
	opts = append([]Option{WithClipboard(cb.write), WithClock(func() time.Time { return testNow })}, opts...)
	m := New(context.Background(), l, theme.Default(), opts...)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, cb
}

func TestEmptyLedgerShowsPlaceholder(t *testing.T) {
	m, _ := newModel(t, newLedger(t))
	if !strings.Contains(m.View(), "No history yet") {
		t.Errorf("View() missing placeholder:\n%s", m.View())
	}
}

func TestListNewestFirst(t *testing.T) {
	m, _ := newModel(t, newLedger(t, "http://x/a", "http://x/b"))
	entries := m.Entries()
	if len(entries) != 2 || entries[0].Name != "GET /b" {
		t.Fatalf("Entries() = %+v", entries)
	}
	v := m.View()
	if strings.Index(v, "GET /b") > strings.Index(v, "GET /a") {
		t.Errorf("newest entry should be listed first:\n%s", v)
	}
}

func TestCursorMovement(t *testing.T) {
	m, _ := newModel(t, newLedger(t, "http://x/a", "http://x/b", "http://x/c"))
	m = send(t, m, key("j"))
	m = send(t, m, key("down"))
	m = send(t, m, key("j"))
	e, _ := m.Current()
	if e.Name != "GET /a" {
		t.Errorf("cursor should stop at the last entry, got %q", e.Name)
	}
	m = send(t, m, key("g"))
	if e, _ := m.Current(); e.Name != "GET /c" {
		t.Errorf("g should jump to first, got %q", e.Name)
	}
}

func TestDeleteRemovesFromLedger(t *testing.T) {
	l := newLedger(t, "http://x/a", "http://x/b")
	m, _ := newModel(t, l)
	m = send(t, m, key("d"))

	if l.Len() != 1 {
		t.Fatalf("ledger Len() = %d, want 1", l.Len())
	}
	if _, ok := l.Select("id-2"); ok {
		t.Error("deleted entry still in ledger")
	}
	if len(m.Entries()) != 1 {
		t.Errorf("view not refreshed: %d entries", len(m.Entries()))
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	l := newLedger(t, "http://x/a", "http://x/b")
	m, _ := newModel(t, l)

	m = send(t, m, key("C"))
	if !m.modal.Visible {
		t.Fatal("expected confirm dialog")
	}
	m = send(t, m, key("n"))
	if l.Len() != 2 {
		t.Fatal("declining must not clear")
	}

	m = send(t, m, key("C"))
	m = send(t, m, key("y"))
	if l.Len() != 0 {
		t.Fatalf("ledger Len() = %d after confirmed clear", l.Len())
	}
	if !strings.Contains(m.View(), "No history yet") {
		t.Errorf("expected placeholder after clear:\n%s", m.View())
	}
}

func TestClearOnEmptyLedgerIsNoop(t *testing.T) {
	m, _ := newModel(t, newLedger(t))
	m = send(t, m, key("C"))
	if m.modal.Visible {
		t.Error("no dialog expected for an empty ledger")
	}
}

func TestFilter(t *testing.T) {
	m, _ := newModel(t, newLedger(t, "http://x/users", "http://x/orders", "http://x/products"))
	m = send(t, m, key("/"))
	for _, r := range "ordr" {
		m = send(t, m, key(string(r)))
	}
	if got := m.Entries(); len(got) != 1 || got[0].Name != "GET /orders" {
		t.Fatalf("filtered entries = %+v", got)
	}
	m = send(t, m, key("esc"))
	if len(m.Entries()) != 3 {
		t.Errorf("esc should reset the filter, got %d entries", len(m.Entries()))
	}
}

func TestDetailView(t *testing.T) {
	m, _ := newModel(t, newLedger(t, "http://x/a"))
	m = send(t, m, key("enter"))
	if !m.detail {
		t.Fatal("enter should open the detail view")
	}
	v := m.View()
	if !strings.Contains(v, "http://x/a") || !strings.Contains(v, "200") {
		t.Errorf("detail view missing request or status:\n%s", v)
	}
	m = send(t, m, key("esc"))
	if m.detail {
		t.Error("esc should return to the list")
	}
}

func TestCopyResponseAndCurl(t *testing.T) {
	m, cb := newModel(t, newLedger(t, "http://x/a"))
	m = send(t, m, key("c"))
	if !strings.Contains(cb.text, `"url": "http://x/a"`) {
		t.Errorf("clipboard = %q", cb.text)
	}
	if !m.toast.Visible || m.toast.IsError() {
		t.Error("expected success toast")
	}

	m = send(t, m, key("y"))
	if cb.text != "curl 'http://x/a'" {
		t.Errorf("clipboard = %q", cb.text)
	}
}

func TestCopyClipboardError(t *testing.T) {
	m, cb := newModel(t, newLedger(t, "http://x/a"))
	cb.err = errors.New("no clipboard")
	m = send(t, m, key("c"))
	if !m.toast.IsError() || !strings.Contains(m.toast.Text(), "no clipboard") {
		t.Errorf("toast = %q", m.toast.Text())
	}
}

type stubExecutor struct{ calls int }

func (s *stubExecutor) Execute(_ context.Context, req protocol.Request) protocol.Response {
	s.calls++
	return protocol.Response{Status: 201, StatusText: "Created", Headers: map[string]string{}}
}

func TestResendRecordsNewEntry(t *testing.T) {
	l := newLedger(t, "http://x/a")
	exec := &stubExecutor{}
	m, _ := newModel(t, l, WithExecutor(exec))
	m = send(t, m, key("r"))

	if exec.calls != 1 {
		t.Fatalf("executor calls = %d", exec.calls)
	}
	if l.Len() != 2 {
		t.Fatalf("ledger Len() = %d, want 2", l.Len())
	}
	if e, _ := m.Current(); e.Response == nil || e.Response.Status != 201 {
		t.Errorf("cursor should be on the new entry, got %+v", e)
	}
}

func TestResendWithoutExecutorIsNoop(t *testing.T) {
	l := newLedger(t, "http://x/a")
	m, _ := newModel(t, l)
	send(t, m, key("r"))
	if l.Len() != 1 {
		t.Errorf("ledger Len() = %d, want 1", l.Len())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, newLedger(t))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
