package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/restclient/internal/api"
)

// Rupiah formats an amount the way Indonesian price tags do: "Rp 20.000".
func Rupiah(v float64) string {
	n := int64(v)
	s := strings.ReplaceAll(humanize.Comma(n), ",", ".")
	if frac := v - float64(n); frac != 0 {
		dec := strconv.FormatFloat(frac, 'f', 2, 64)
		s += "," + strings.TrimPrefix(strings.TrimPrefix(dec, "-"), "0.")
	}
	return "Rp " + s
}

// Products prints a product table.
func (p *Printer) Products(rows []api.Product) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, p.styles.Muted.Render("No products"))
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Key().String(),
			r.DisplayName(),
			r.Category,
			Rupiah(r.Price.Float()),
			strconv.FormatInt(r.Stock.Int(), 10),
			truncate(r.Description, 40),
		})
	}
	fmt.Fprintln(p.w, p.table([]string{"ID", "NAME", "CATEGORY", "PRICE", "STOCK", "DESCRIPTION"}, out))
}

// Transactions prints a transaction table.
func (p *Printer) Transactions(rows []api.Transaction) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, p.styles.Muted.Render("No transactions"))
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		name := r.ProductName
		if name == "" {
			name = "#" + r.ProductID.String()
		}
		out = append(out, []string{
			r.ID.String(),
			name,
			strconv.FormatInt(r.Qty.Int(), 10),
			Rupiah(r.TotalPrice.Float()),
			r.Date,
		})
	}
	fmt.Fprintln(p.w, p.table([]string{"ID", "PRODUCT", "QTY", "TOTAL", "DATE"}, out))
}

// StockChange reports a compensating stock update, or why it failed.
func (p *Printer) StockChange(res api.TransactionResult) {
	switch {
	case res.StockErr != nil:
		fmt.Fprintln(p.w, p.styles.Warning.Render("Stock not updated: "+res.StockErr.Error()))
	case res.Stock != nil:
		fmt.Fprintf(p.w, "Stock of product %s: %d -> %d\n",
			res.Stock.ProductID, res.Stock.Before, res.Stock.After)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
