package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/restclient/internal/api"
	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/validation"
)

func (a *app) productsCmd(ctx context.Context, args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintf(w, "Usage: restclient products <list|get|create|update|delete> [flags]\n\n")
		fmt.Fprintf(w, "Manage products at %s\n\n", a.cfg.ProductURL)
		fmt.Fprintf(w, "Subcommands:\n")
		fmt.Fprintf(w, "  list [--json]                   List products\n")
		fmt.Fprintf(w, "  get <id> [--json]               Show one product\n")
		fmt.Fprintf(w, "  create --name n --category c --price p --stock s --description d [--image file]\n")
		fmt.Fprintf(w, "  update <id> [same flags]        Change the given fields of a product\n")
		fmt.Fprintf(w, "  delete <id>                     Delete a product\n")
		fmt.Fprintf(w, "\nCategories: %s\n", strings.Join(validation.Categories, ", "))
	}
	if len(args) == 0 {
		usage(a.stderr)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return a.productsList(ctx, rest)
	case "get", "show":
		return a.productsGet(ctx, rest)
	case "create", "add":
		return a.productsSave(ctx, rest, false)
	case "update", "edit":
		return a.productsSave(ctx, rest, true)
	case "delete", "rm":
		return a.productsDelete(ctx, rest)
	case "help", "-h", "--help":
		usage(a.stdout)
		return exitOK
	}
	fmt.Fprintf(a.stderr, "Error: unknown products subcommand %q\n\n", sub)
	usage(a.stderr)
	return exitUsage
}

// withClient opens the ledger and an api client recording into it, then
// runs fn. A history that cannot be opened only disables recording.
func (a *app) withClient(ctx context.Context, fn func(*api.Client) int) int {
	ledger, closeFn, err := a.openLedger(ctx)
	if err != nil {
		a.log.Warn("history unavailable, requests will not be recorded", "error", err)
		ledger, closeFn = nil, func() {}
	}
	defer closeFn()

	client, err := a.apiClient(ledger)
	if err != nil {
		return a.fail(err)
	}
	return fn(client)
}

func (a *app) productsList(ctx context.Context, args []string) int {
	fs := a.newFlagSet("products list")
	jsonOut := fs.Bool("json", false, "Print products as JSON")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	return a.withClient(ctx, func(c *api.Client) int {
		rows, err := c.Products.List(ctx)
		if err != nil {
			return a.fail(err)
		}
		p := a.printer()
		if *jsonOut {
			if rows == nil {
				rows = []api.Product{}
			}
			if err := p.JSON(rows); err != nil {
				return a.fail(err)
			}
			return exitOK
		}
		p.Products(rows)
		return exitOK
	})
}

func (a *app) productsGet(ctx context.Context, args []string) int {
	fs := a.newFlagSet("products get")
	jsonOut := fs.Bool("json", false, "Print the product as JSON")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient products get <id> [--json]\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "exactly one product id is required")
	}
	return a.withClient(ctx, func(c *api.Client) int {
		row, err := c.Products.Get(ctx, api.ID(fs.Arg(0)))
		if err != nil {
			return a.fail(err)
		}
		p := a.printer()
		if *jsonOut {
			if err := p.JSON(row); err != nil {
				return a.fail(err)
			}
			return exitOK
		}
		p.Products([]api.Product{row})
		return exitOK
	})
}

func (a *app) productsSave(ctx context.Context, args []string, update bool) int {
	name := "products create"
	if update {
		name = "products update"
	}
	fs := a.newFlagSet(name)
	in := api.ProductInput{}
	fs.StringVar(&in.Name, "name", "", "Product name")
	fs.StringVar(&in.Category, "category", "", "Category (see 'restclient products help')")
	fs.StringVar(&in.Price, "price", "", "Price, a non-negative number")
	fs.StringVar(&in.Stock, "stock", "", "Stock, a non-negative integer")
	fs.StringVar(&in.Description, "description", "", "Description")
	imagePath := fs.String("image", "", "Image file to upload")
	fs.Usage = func() {
		if update {
			fmt.Fprintf(a.stderr, "Usage: restclient products update <id> [flags]\n\n")
			fmt.Fprintf(a.stderr, "Fields not given keep their current value.\n\n")
		} else {
			fmt.Fprintf(a.stderr, "Usage: restclient products create [flags]\n\n")
		}
		fmt.Fprintf(a.stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if update && fs.NArg() != 1 {
		return a.usageError(fs, "exactly one product id is required")
	}
	if !update && fs.NArg() != 0 {
		return a.usageError(fs, "unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return a.usageError(fs, "reading image: %v", err)
		}
		in.Image = data
	}

	return a.withClient(ctx, func(c *api.Client) int {
		var (
			resp protocol.Response
			err  error
		)
		if update {
			id := api.ID(fs.Arg(0))
			current, getErr := c.Products.Get(ctx, id)
			if getErr != nil {
				return a.fail(getErr)
			}
			in = mergeProduct(fs, in, current)
			resp, err = c.Products.Update(ctx, id, in)
		} else {
			resp, err = c.Products.Create(ctx, in)
		}
		if err != nil {
			return a.fail(err)
		}
		verb := "created"
		if update {
			verb = "updated"
		}
		a.reportMutation("Product "+verb, resp)
		return exitOK
	})
}

// mergeProduct fills the fields not set on the command line from current.
func mergeProduct(fs *flag.FlagSet, in api.ProductInput, current api.Product) api.ProductInput {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["name"] {
		in.Name = current.DisplayName()
	}
	if !set["category"] {
		in.Category = current.Category
	}
	if !set["price"] {
		in.Price = strconv.FormatFloat(current.Price.Float(), 'f', -1, 64)
	}
	if !set["stock"] {
		in.Stock = strconv.FormatInt(current.Stock.Int(), 10)
	}
	if !set["description"] {
		in.Description = current.Description
	}
	return in
}

func (a *app) productsDelete(ctx context.Context, args []string) int {
	fs := a.newFlagSet("products delete")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient products delete <id>\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError(fs, "exactly one product id is required")
	}
	return a.withClient(ctx, func(c *api.Client) int {
		resp, err := c.Products.Delete(ctx, api.ID(fs.Arg(0)))
		if err != nil {
			return a.fail(err)
		}
		a.reportMutation("Product deleted", resp)
		return exitOK
	})
}

// reportMutation prints a success line with the backend message, if any.
func (a *app) reportMutation(what string, resp protocol.Response) {
	line := what
	if obj, ok := resp.Data.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			line += ": " + msg
		}
	}
	fmt.Fprintln(a.stdout, line)
}
