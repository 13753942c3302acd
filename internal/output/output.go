// Package output renders responses, history and resource listings for the
// terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/tidwall/pretty"

	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/ui/theme"
)

// Printer writes human-readable output to w.
type Printer struct {
	w      io.Writer
	theme  theme.Theme
	styles theme.Styles
	color  bool
	now    func() time.Time
}

// New creates a Printer. When color is false all styling is dropped.
func New(w io.Writer, t theme.Theme, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:      w,
		theme:  t,
		styles: theme.NewStylesFor(r, t),
		color:  color,
		now:    time.Now,
	}
}

// SetClock overrides the time used for relative timestamps.
func (p *Printer) SetClock(now func() time.Time) { p.now = now }

// Response prints the status line, headers and body of resp.
func (p *Printer) Response(resp protocol.Response) {
	fmt.Fprintln(p.w, p.statusLine(resp))

	if resp.Failed() {
		msg := resp.ErrorMessage()
		if msg == "" {
			msg = "request failed"
		}
		fmt.Fprintln(p.w, p.styles.Error.Render("Error: "+msg))
		return
	}

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.w, "%s: %s\n", p.styles.Key.Render(k), resp.Headers[k])
	}

	body := FormatBody(resp.Data)
	if body == "" {
		return
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.highlight(body, lexerFor(resp)))
}

// Request prints the method, URL, headers and body of req.
func (p *Printer) Request(req protocol.Request) {
	fmt.Fprintf(p.w, "%s %s\n", p.styles.MethodBadge(req.Method), req.URL)

	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.w, "%s: %s\n", p.styles.Key.Render(k), req.Headers[k])
	}
	if req.Body != "" && req.Method.SendsBody() {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.highlight(prettyText(req.Body), "json"))
	}
}

// JSON prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if p.color {
		data = pretty.Color(data, nil)
	}
	_, err = p.w.Write(data)
	return err
}

func (p *Printer) statusLine(resp protocol.Response) string {
	parts := []string{
		p.styles.StatusBadge(resp.Status, resp.StatusText),
		fmt.Sprintf("%d ms", resp.Time),
	}
	if !resp.Failed() {
		parts = append(parts, humanize.IBytes(uint64(max(resp.Size, 0))))
	}
	return strings.Join(parts, p.styles.Muted.Render("  ·  "))
}

// FormatBody renders response data for display: strings verbatim, anything
// else as indented JSON.
func FormatBody(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, err := marshal(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	return strings.TrimRight(string(pretty.Pretty(b)), "\n")
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func prettyText(s string) string {
	if json.Valid([]byte(s)) {
		return strings.TrimRight(string(pretty.Pretty([]byte(s))), "\n")
	}
	return s
}

func lexerFor(resp protocol.Response) string {
	if _, ok := resp.Data.(string); ok {
		return detectLexer(resp.ContentType())
	}
	return "json"
}

// detectLexer maps Content-Type to a chroma lexer name.
func detectLexer(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case ct == "text/css":
		return "css"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	default:
		return "text"
	}
}

// highlight applies chroma syntax highlighting when color is enabled.
func (p *Printer) highlight(source, lexerName string) string {
	if !p.color || lexerName == "text" {
		return source
	}
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(p.theme.Syntax)
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
