package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/sadopc/restclient/internal/api"
	"github.com/sadopc/restclient/internal/config"
	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/logging"
	"github.com/sadopc/restclient/internal/output"
	"github.com/sadopc/restclient/internal/protocol"
	httpclient "github.com/sadopc/restclient/internal/protocol/http"
	"github.com/sadopc/restclient/internal/ui/theme"
	"github.com/sadopc/restclient/internal/validation"
	"github.com/sadopc/restclient/pkg/version"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// app carries what every subcommand needs.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	log    *slog.Logger
	theme  theme.Theme
	color  bool

	// exec overrides the HTTP executor; tests point it at a handler.
	exec protocol.Executor
	// store overrides the configured history backend.
	store history.Store
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, cfgErr := config.Load()
	a := newApp(cfg, stdin, stdout, stderr)
	if cfgErr != nil {
		a.log.Warn("using default configuration", "error", cfgErr)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid config %s: %v\n", config.Path(), err)
		return exitUsage
	}
	return a.dispatch(ctx, args)
}

func newApp(cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		log: logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: logging.ParseFormat(cfg.LogFormat),
			Output: stderr,
		}),
		theme: theme.Resolve(cfg.Theme, config.ThemesDir()),
		color: useColor(cfg.Color, stdout),
	}
}

func (a *app) dispatch(ctx context.Context, args []string) int {
	if len(args) == 0 {
		return a.browseCmd(ctx, nil)
	}
	switch args[0] {
	case "send":
		return a.sendCmd(ctx, args[1:])
	case "history":
		return a.historyCmd(ctx, args[1:])
	case "browse":
		return a.browseCmd(ctx, args[1:])
	case "products":
		return a.productsCmd(ctx, args[1:])
	case "transactions":
		return a.transactionsCmd(ctx, args[1:])
	case "mock":
		return a.mockCmd(ctx, args[1:])
	case "completion":
		return a.completionCmd(args[1:])
	case "version", "--version":
		fmt.Fprintf(a.stdout, "restclient %s\n", version.String())
		return exitOK
	case "help", "-h", "--help":
		printHelp(a.stdout)
		return exitOK
	}
	fmt.Fprintf(a.stderr, "Error: unknown command %q\n\n", args[0])
	printHelp(a.stderr)
	return exitUsage
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `restclient - A REST API client for the terminal

Usage:
  restclient                        Browse request history (interactive)
  restclient <command> [args] [flags]

Commands:
  send          Send an HTTP request and record it in history
  history       List, show, remove, clear or export recorded requests
  browse        Browse request history interactively
  products      Manage products through the products API
  transactions  Manage transactions through the transactions API
  mock          Start a local products/transactions backend
  completion    Generate shell completion scripts (bash, zsh, fish)
  version       Print version information
  help          Show this help message

Configuration is read from %s
(override with $%s).

Run 'restclient <command> --help' for more information about a command.
`, displayPath(config.Path()), config.EnvConfig)
}

func displayPath(p string) string {
	if p == "" {
		return "~/.config/restclient/config.yaml"
	}
	return p
}

// newFlagSet creates a flag set that reports errors instead of exiting.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parse parses args into fs. ok is false when the command should stop, in
// which case code is the exit code.
func parse(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}

// usageError prints msg and the command usage.
func (a *app) usageError(fs *flag.FlagSet, format string, args ...any) int {
	fmt.Fprintf(a.stderr, "Error: "+format+"\n\n", args...)
	fs.Usage()
	return exitUsage
}

// fail reports err and maps it to an exit code: rejected input is a usage
// error, everything else an application failure.
func (a *app) fail(err error) int {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		fmt.Fprintln(a.stderr, "Error: invalid input")
		for _, line := range strings.Split(strings.TrimPrefix(fe.Error(), "invalid input: "), "; ") {
			fmt.Fprintf(a.stderr, "  %s\n", line)
		}
		return exitUsage
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return exitFail
}

func (a *app) printer() *output.Printer {
	return output.New(a.stdout, a.theme, a.color)
}

// executor returns the HTTP executor configured from the config file.
func (a *app) executor() (protocol.Executor, error) {
	if a.exec != nil {
		return a.exec, nil
	}
	c := httpclient.New()
	c.SetTimeout(a.cfg.Timeout)
	c.SetLogger(a.log)
	if a.cfg.Proxy != "" {
		if err := c.SetProxy(a.cfg.Proxy, a.cfg.NoProxy); err != nil {
			return nil, fmt.Errorf("configuring proxy: %w", err)
		}
	}
	tlsOpts := httpclient.TLSOptions(a.cfg.TLS)
	if !tlsOpts.IsZero() {
		if err := c.SetTLS(tlsOpts); err != nil {
			return nil, fmt.Errorf("configuring TLS: %w", err)
		}
	}
	return c, nil
}

// openLedger opens the history ledger on the configured backend. The
// returned func releases the backend.
func (a *app) openLedger(ctx context.Context) (*history.Ledger, func(), error) {
	store, closeFn, err := a.historyStore()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := history.Open(ctx, store, history.WithLogger(a.log))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return ledger, closeFn, nil
}

func (a *app) historyStore() (history.Store, func(), error) {
	noop := func() {}
	if a.store != nil {
		return a.store, noop, nil
	}

	path := a.cfg.HistoryPath()
	switch a.cfg.History.Backend {
	case config.BackendMemory:
		return history.NewMemoryStore(), noop, nil
	case config.BackendJSON:
		return history.NewFileStore(path), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating history dir: %w", err)
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			a.log.Warn("closing history db", "error", err)
		}
	}, nil
}

// recorder records every call made by the api client into ledger.
func (a *app) recorder(ledger *history.Ledger) api.RecordFunc {
	return func(ctx context.Context, req protocol.Request, resp protocol.Response) {
		if _, err := ledger.Record(ctx, req, &resp); err != nil {
			a.log.Warn("recording history", "error", err)
		}
	}
}

// apiClient builds the products/transactions client, recording into ledger
// when it is not nil.
func (a *app) apiClient(ledger *history.Ledger) (*api.Client, error) {
	exec, err := a.executor()
	if err != nil {
		return nil, err
	}
	opts := []api.Option{
		api.WithProductURL(a.cfg.ProductURL),
		api.WithTransactionURL(a.cfg.TransactionURL),
		api.WithLogger(a.log),
	}
	if ledger != nil {
		opts = append(opts, api.WithRecorder(a.recorder(ledger)))
	}
	return api.New(exec, opts...), nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
