package output

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/restclient/internal/core/history"
)

// EmptyHistory is shown when the ledger has no entries.
const EmptyHistory = "No history yet"

// History prints entries as a table, newest first.
func (p *Printer) History(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.styles.Muted.Render(EmptyHistory))
		return
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		status, elapsed := "-", "-"
		if e.Response != nil {
			status = p.styles.StatusBadge(e.Response.Status, e.Response.StatusText)
			elapsed = strconv.FormatInt(e.Response.Time, 10) + " ms"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.styles.MethodBadge(e.Config.Method),
			e.Config.URL,
			status,
			elapsed,
			humanize.RelTime(e.Time(), p.now(), "ago", "from now"),
			e.ID,
		})
	}

	fmt.Fprintln(p.w, p.table([]string{"#", "METHOD", "URL", "STATUS", "TIME", "WHEN", "ID"}, rows))
}

// Entry prints one history entry: its request, then its response.
func (p *Printer) Entry(e history.Entry) {
	fmt.Fprintf(p.w, "%s  %s\n", p.styles.Title.Render(e.Name),
		p.styles.Muted.Render(e.Time().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(p.w)
	p.Request(e.Config)
	if e.Response == nil {
		return
	}
	fmt.Fprintln(p.w)
	p.Response(*e.Response)
}

func (p *Printer) table(headers []string, rows [][]string) string {
	header := p.styles.Bold
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.styles.Muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			return p.styles.Normal.Padding(0, 1)
		}).
		String()
}
