package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sadopc/restclient/internal/api"
)

func (a *app) transactionsCmd(ctx context.Context, args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintf(w, "Usage: restclient transactions <list|get|create|update|delete> [flags]\n\n")
		fmt.Fprintf(w, "Manage transactions at %s\n", a.cfg.TransactionURL)
		fmt.Fprintf(w, "Product stock is adjusted to match every change.\n\n")
		fmt.Fprintf(w, "Subcommands:\n")
		fmt.Fprintf(w, "  list [--json]                            List transactions\n")
		fmt.Fprintf(w, "  get <id> [--json]                        Show one transaction\n")
		fmt.Fprintf(w, "  create --product id --qty n [--total t]  Record a sale\n")
		fmt.Fprintf(w, "  update <id> [same flags]                 Change a transaction\n")
		fmt.Fprintf(w, "  delete <id>                              Delete and restock\n")
	}
	if len(args) == 0 {
		usage(a.stderr)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return a.transactionsList(ctx, rest)
	case "get", "show":
		return a.transactionsGet(ctx, rest)
	case "create", "add":
		return a.transactionsSave(ctx, rest, false)
	case "update", "edit":
		return a.transactionsSave(ctx, rest, true)
	case "delete", "rm":
		return a.transactionsDelete(ctx, rest)
	case "help", "-h", "--help":
		usage(a.stdout)
		return exitOK
	}
	fmt.Fprintf(a.stderr, "Error: unknown transactions subcommand %q\n\n", sub)
	usage(a.stderr)
	return exitUsage
}

func (a *app) transactionsList(ctx context.Context, args []string) int {
	fs := a.newFlagSet("transactions list")
	jsonOut := fs.Bool("json", false, "Print transactions as JSON")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	return a.withClient(ctx, func(c *api.Client) int {
		rows, err := c.Transactions.List(ctx)
		if err != nil {
			return a.fail(err)
		}
		rows = c.Transactions.ResolveNames(ctx, rows)
		p := a.printer()
		if *jsonOut {
			if rows == nil {
				rows = []api.Transaction{}
			}
			if err := p.JSON(rows); err != nil {
				return a.fail(err)
			}
			return exitOK
		}
		p.Transactions(rows)
		return exitOK
	})
}

func (a *app) transactionsGet(ctx context.Context, args []string) int {
	fs := a.newFlagSet("transactions get")
	jsonOut := fs.Bool("json", false, "Print the transaction as JSON")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient transactions get <id> [--json]\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "exactly one transaction id is required")
	}
	return a.withClient(ctx, func(c *api.Client) int {
		row, err := c.Transactions.Get(ctx, api.ID(fs.Arg(0)))
		if err != nil {
			return a.fail(err)
		}
		rows := c.Transactions.ResolveNames(ctx, []api.Transaction{row})
		p := a.printer()
		if *jsonOut {
			if err := p.JSON(rows[0]); err != nil {
				return a.fail(err)
			}
			return exitOK
		}
		p.Transactions(rows)
		return exitOK
	})
}

func (a *app) transactionsSave(ctx context.Context, args []string, update bool) int {
	name := "transactions create"
	if update {
		name = "transactions update"
	}
	fs := a.newFlagSet(name)
	in := api.TransactionInput{}
	fs.StringVar(&in.ProductID, "product", "", "Product id")
	fs.StringVar(&in.Qty, "qty", "", "Quantity, a non-negative integer")
	fs.StringVar(&in.TotalPrice, "total", "", "Total price (default: computed by the backend)")
	fs.Usage = func() {
		if update {
			fmt.Fprintf(a.stderr, "Usage: restclient transactions update <id> [flags]\n\n")
			fmt.Fprintf(a.stderr, "Fields not given keep their current value.\n\n")
		} else {
			fmt.Fprintf(a.stderr, "Usage: restclient transactions create [flags]\n\n")
		}
		fmt.Fprintf(a.stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if update && fs.NArg() != 1 {
		return a.usageError(fs, "exactly one transaction id is required")
	}
	if !update && fs.NArg() != 0 {
		return a.usageError(fs, "unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return a.withClient(ctx, func(c *api.Client) int {
		var (
			res api.TransactionResult
			err error
		)
		if update {
			id := api.ID(fs.Arg(0))
			current, getErr := c.Transactions.Get(ctx, id)
			if getErr != nil {
				return a.fail(getErr)
			}
			in = mergeTransaction(fs, in, current)
			res, err = c.Transactions.Update(ctx, id, in)
		} else {
			res, err = c.Transactions.Create(ctx, in)
		}
		if err != nil {
			return a.fail(err)
		}
		verb := "created"
		if update {
			verb = "updated"
		}
		a.reportMutation("Transaction "+verb, res.Response)
		a.printer().StockChange(res)
		return exitOK
	})
}

// mergeTransaction fills the fields not set on the command line from
// current. The total is only carried over when neither product nor qty
// changed, otherwise the backend recomputes it.
func mergeTransaction(fs *flag.FlagSet, in api.TransactionInput, current api.Transaction) api.TransactionInput {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["product"] {
		in.ProductID = current.ProductID.String()
	}
	if !set["qty"] {
		in.Qty = strconv.FormatInt(current.Qty.Int(), 10)
	}
	if !set["total"] && !set["product"] && !set["qty"] {
		in.TotalPrice = strconv.FormatFloat(current.TotalPrice.Float(), 'f', -1, 64)
	}
	return in
}

func (a *app) transactionsDelete(ctx context.Context, args []string) int {
	fs := a.newFlagSet("transactions delete")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient transactions delete <id>\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "exactly one transaction id is required")
	}
	return a.withClient(ctx, func(c *api.Client) int {
		res, err := c.Transactions.Delete(ctx, api.ID(fs.Arg(0)))
		if err != nil {
			return a.fail(err)
		}
		a.reportMutation("Transaction deleted", res.Response)
		a.printer().StockChange(res)
		return exitOK
	})
}
