package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/validation"
)

func stockOf(t *testing.T, c *Client, id ID) int64 {
	t.Helper()
	p, err := c.Products.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return p.Stock.Int()
}

func TestTransactionsCreateTakesStock(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.Transactions.Create(ctx, TransactionInput{ProductID: "1", Qty: "7"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Response.Status != 201 || res.StockErr != nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Stock == nil || res.Stock.Before != 100 || res.Stock.After != 93 {
		t.Errorf("stock change = %+v", res.Stock)
	}
	if got := stockOf(t, c, "1"); got != 93 {
		t.Errorf("stock = %d, want 93", got)
	}
}

func TestTransactionsCreateClampsStockAtZero(t *testing.T) {
	c, _, _ := newTestClient(t)
	res, err := c.Transactions.Create(context.Background(), TransactionInput{ProductID: "3", Qty: "30"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stock == nil || res.Stock.After != 0 {
		t.Errorf("stock change = %+v", res.Stock)
	}
	if got := stockOf(t, c, "3"); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestTransactionsUpdateMovesStockByDifference(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	// Seeded transaction 1 has qty 2 of product 1 (stock 100).
	res, err := c.Transactions.Update(ctx, "1", TransactionInput{ProductID: "1", Qty: "5"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stock == nil || res.Stock.After != 97 {
		t.Errorf("stock change = %+v", res.Stock)
	}

	res, err = c.Transactions.Update(ctx, "1", TransactionInput{ProductID: "1", Qty: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stock == nil || res.Stock.Before != 97 || res.Stock.After != 101 {
		t.Errorf("stock change = %+v", res.Stock)
	}

	tx, err := c.Transactions.Get(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Qty != 1 || tx.TotalPrice != 20000 {
		t.Errorf("transaction = %+v", tx)
	}
}

func TestTransactionsUpdateSendsTotalWhenGiven(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()
	if _, err := c.Transactions.Update(ctx, "1", TransactionInput{ProductID: "1", Qty: "2", TotalPrice: "35000"}); err != nil {
		t.Fatal(err)
	}
	tx, _ := c.Transactions.Get(ctx, "1")
	if tx.TotalPrice != 35000 {
		t.Errorf("total = %v", tx.TotalPrice)
	}
}

func TestTransactionsUpdateMissingRow(t *testing.T) {
	c, _, rec := newTestClient(t)
	_, err := c.Transactions.Update(context.Background(), "42", TransactionInput{ProductID: "1", Qty: "1"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, m := range rec.methods() {
		if m == protocol.MethodPut {
			t.Error("update was sent for a row that could not be loaded")
		}
	}
}

func TestTransactionsDeleteRestoresStock(t *testing.T) {
	c, _, _ := newTestClient(t)
	res, err := c.Transactions.Delete(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Stock == nil || res.Stock.After != 102 {
		t.Errorf("stock change = %+v", res.Stock)
	}
	if got := stockOf(t, c, "1"); got != 102 {
		t.Errorf("stock = %d, want 102", got)
	}
}

func TestTransactionsCompensationFailureIsNotFatal(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Products.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	res, err := c.Transactions.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if res.Response.Status != 200 {
		t.Errorf("status = %d", res.Response.Status)
	}
	if res.Stock != nil || !errors.Is(res.StockErr, ErrNotFound) {
		t.Errorf("stock = %+v, stockErr = %v", res.Stock, res.StockErr)
	}
}

func TestTransactionsCreateBackendRejection(t *testing.T) {
	c, _, _ := newTestClient(t)
	res, err := c.Transactions.Create(context.Background(), TransactionInput{ProductID: "99", Qty: "1"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 200 || !strings.Contains(apiErr.Message, "product") {
		t.Fatalf("expected backend rejection, got %v", err)
	}
	if res.Stock != nil {
		t.Error("stock adjusted for a rejected transaction")
	}
}

func TestTransactionsValidate(t *testing.T) {
	c, _, rec := newTestClient(t)
	_, err := c.Transactions.Create(context.Background(), TransactionInput{ProductID: "one", Qty: "-1"})
	var fe validation.FieldErrors
	if !errors.As(err, &fe) || len(fe) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
	if len(rec.methods()) != 0 {
		t.Error("invalid input reached the backend")
	}
}

func TestTransactionsListAndResolveNames(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()
	if _, err := c.Transactions.Create(ctx, TransactionInput{ProductID: "1", Qty: "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Transactions.Create(ctx, TransactionInput{ProductID: "2", Qty: "1"}); err != nil {
		t.Fatal(err)
	}

	rows, err := c.Transactions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}

	var lookups int
	counting := New(execFunc(func(ctx context.Context, req protocol.Request) protocol.Response {
		lookups++
		return c.exec.Execute(ctx, req)
	}), WithProductURL(c.ProductURL()), WithTransactionURL(c.TransactionURL()))

	named := counting.Transactions.ResolveNames(ctx, rows)
	if named[0].ProductName != "Diamond 86" || named[2].ProductName != "Genesis Crystal 300" {
		t.Errorf("names = %q, %q", named[0].ProductName, named[2].ProductName)
	}
	if lookups != 2 {
		t.Errorf("lookups = %d, want one per distinct product", lookups)
	}
	if rows[0].ProductName != "" {
		t.Error("ResolveNames modified its input")
	}
}

func TestTransactionsProductName(t *testing.T) {
	c, _, _ := newTestClient(t)
	name, err := c.Transactions.ProductName(context.Background(), "3")
	if err != nil || name != "Robux 400" {
		t.Errorf("ProductName = %q, %v", name, err)
	}
}
