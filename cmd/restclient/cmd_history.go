package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/export"
	harexport "github.com/sadopc/restclient/internal/export/har"
	"github.com/sadopc/restclient/pkg/version"
)

func (a *app) historyCmd(ctx context.Context, args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintf(w, "Usage: restclient history <list|show|rm|clear|export> [flags]\n\n")
		fmt.Fprintf(w, "Work with the recorded request history (newest first, at most %d entries).\n\n", history.Capacity)
		fmt.Fprintf(w, "Subcommands:\n")
		fmt.Fprintf(w, "  list [--search q] [--json]       List entries\n")
		fmt.Fprintf(w, "  show <id|#> [--json]             Show one entry with its response\n")
		fmt.Fprintf(w, "  rm <id|#>...                     Remove entries\n")
		fmt.Fprintf(w, "  clear [--yes]                    Remove every entry\n")
		fmt.Fprintf(w, "  export [--format f] [--output p] Export entries as curl, har or json\n")
		fmt.Fprintf(w, "\nEntries can be named by id or by their # in 'history list'.\n")
	}
	if len(args) == 0 {
		usage(a.stderr)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return a.historyList(ctx, rest)
	case "show":
		return a.historyShow(ctx, rest)
	case "rm", "remove", "delete":
		return a.historyRemove(ctx, rest)
	case "clear":
		return a.historyClear(ctx, rest)
	case "export":
		return a.historyExport(ctx, rest)
	case "help", "-h", "--help":
		usage(a.stdout)
		return exitOK
	}
	fmt.Fprintf(a.stderr, "Error: unknown history subcommand %q\n\n", sub)
	usage(a.stderr)
	return exitUsage
}

func (a *app) historyList(ctx context.Context, args []string) int {
	fs := a.newFlagSet("history list")
	search := fs.String("search", "", "Fuzzy filter on name and URL")
	jsonOut := fs.Bool("json", false, "Print entries as JSON")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient history list [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	entries := ledger.Search(*search)
	p := a.printer()
	if *jsonOut {
		if entries == nil {
			entries = []history.Entry{}
		}
		if err := p.JSON(entries); err != nil {
			return a.fail(err)
		}
		return exitOK
	}
	p.History(entries)
	return exitOK
}

func (a *app) historyShow(ctx context.Context, args []string) int {
	fs := a.newFlagSet("history show")
	jsonOut := fs.Bool("json", false, "Print the entry as JSON")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient history show <id|#> [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "exactly one entry id is required")
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	entry, ok := lookupEntry(ledger, fs.Arg(0))
	if !ok {
		return a.fail(fmt.Errorf("no history entry %q", fs.Arg(0)))
	}
	p := a.printer()
	if *jsonOut {
		if err := p.JSON(entry); err != nil {
			return a.fail(err)
		}
		return exitOK
	}
	p.Entry(entry)
	return exitOK
}

func (a *app) historyRemove(ctx context.Context, args []string) int {
	fs := a.newFlagSet("history rm")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient history rm <id|#>...\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 {
		return a.usageError(fs, "at least one entry id is required")
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	// Resolve every reference before removing so list positions stay stable.
	var ids []string
	for _, ref := range fs.Args() {
		e, ok := lookupEntry(ledger, ref)
		if !ok {
			fmt.Fprintf(a.stderr, "Warning: no history entry %q\n", ref)
			continue
		}
		ids = append(ids, e.ID)
	}
	for _, id := range ids {
		if err := ledger.Remove(ctx, id); err != nil {
			return a.fail(err)
		}
	}
	fmt.Fprintf(a.stdout, "Removed %d entries\n", len(ids))
	return exitOK
}

func (a *app) historyClear(ctx context.Context, args []string) int {
	fs := a.newFlagSet("history clear")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient history clear [--yes]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	n := ledger.Len()
	if n == 0 {
		fmt.Fprintln(a.stdout, "History is already empty")
		return exitOK
	}
	if !*yes && !a.confirm(fmt.Sprintf("Remove all %d history entries? [y/N] ", n)) {
		fmt.Fprintln(a.stdout, "Aborted")
		return exitOK
	}
	if err := ledger.Clear(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "Removed %d entries\n", n)
	return exitOK
}

func (a *app) historyExport(ctx context.Context, args []string) int {
	fs := a.newFlagSet("history export")
	format := fs.String("format", "har", "Export format: har, curl, json")
	outPath := fs.String("output", "", "Output file path (default: stdout)")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient history export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(a.stderr, "\nExamples:\n")
		fmt.Fprintf(a.stderr, "  restclient history export --output session.har\n")
		fmt.Fprintf(a.stderr, "  restclient history export --format curl > replay.sh\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	switch *format {
	case "har", "curl", "json":
	default:
		return a.usageError(fs, "invalid format %q (must be har, curl or json)", *format)
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()
	entries := ledger.List()

	var data []byte
	switch *format {
	case "har":
		data, err = harexport.Export(entries, version.Version)
	case "curl":
		var b strings.Builder
		// Oldest first, so the script replays in the original order.
		for i := len(entries) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "# %s\n%s\n\n", entries[i].Name, export.AsCurl(entries[i].Config))
		}
		data = []byte(b.String())
	case "json":
		if entries == nil {
			entries = []history.Entry{}
		}
		data, err = marshalIndent(entries)
	}
	if err != nil {
		return a.fail(err)
	}

	if *outPath == "" {
		_, err = a.stdout.Write(data)
	} else {
		err = os.WriteFile(*outPath, data, 0o644)
		if err == nil {
			fmt.Fprintf(a.stderr, "Exported %d entries to %s\n", len(entries), *outPath)
		}
	}
	if err != nil {
		return a.fail(fmt.Errorf("writing export: %w", err))
	}
	return exitOK
}

// lookupEntry resolves ref as an entry id, else as a 1-based list position.
func lookupEntry(ledger *history.Ledger, ref string) (history.Entry, bool) {
	if e, ok := ledger.Select(ref); ok {
		return e, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return history.Entry{}, false
	}
	entries := ledger.List()
	if n < 1 || n > len(entries) {
		return history.Entry{}, false
	}
	return entries[n-1], true
}

// confirm asks a yes/no question on stdin. Anything but y/yes is a no.
func (a *app) confirm(question string) bool {
	fmt.Fprint(a.stderr, question)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
