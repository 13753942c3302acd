package main

import (
	"context"
	"fmt"

	"github.com/sadopc/restclient/internal/ui/historyview"
)

func (a *app) browseCmd(ctx context.Context, args []string) int {
	fs := a.newFlagSet("browse")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient browse\n\n")
		fmt.Fprintf(a.stderr, "Browse request history interactively.\n\n")
		fmt.Fprintf(a.stderr, "Keys:\n")
		fmt.Fprintf(a.stderr, "  j/k      move            enter  show response\n")
		fmt.Fprintf(a.stderr, "  /        fuzzy filter    r      resend request\n")
		fmt.Fprintf(a.stderr, "  d        delete entry    C      clear history\n")
		fmt.Fprintf(a.stderr, "  c        copy response   y      copy as cURL\n")
		fmt.Fprintf(a.stderr, "  q        quit\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}

	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	exec, err := a.executor()
	if err != nil {
		return a.fail(err)
	}
	if err := historyview.Run(ctx, ledger, a.theme, historyview.WithExecutor(exec)); err != nil {
		return a.fail(err)
	}
	return exitOK
}
