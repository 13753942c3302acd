package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/validation"
)

// Transaction is a row of the transactions resource.
type Transaction struct {
	ID          ID     `json:"id"`
	ProductID   ID     `json:"product_id"`
	Qty         Number `json:"qty"`
	TotalPrice  Number `json:"total_harga"`
	Date        string `json:"tanggal,omitempty"`
	ProductName string `json:"nama_produk,omitempty"`
}

// TransactionInput is transaction data as entered by the user. TotalPrice
// is optional; the backend computes it when omitted.
type TransactionInput struct {
	ProductID  string
	Qty        string
	TotalPrice string
}

type transactionPayload struct {
	ProductID  int64    `json:"product_id"`
	Qty        int64    `json:"qty"`
	TotalPrice *float64 `json:"total_harga,omitempty"`
}

func (in TransactionInput) validate() error {
	return validation.Transaction(validation.TransactionForm{
		ProductID:    in.ProductID,
		Qty:          in.Qty,
		TotalPrice:   in.TotalPrice,
		RequireTotal: strings.TrimSpace(in.TotalPrice) != "",
	})
}

func (in TransactionInput) payload() transactionPayload {
	pid, _ := strconv.ParseInt(strings.TrimSpace(in.ProductID), 10, 64)
	qty, _ := strconv.ParseInt(strings.TrimSpace(in.Qty), 10, 64)
	p := transactionPayload{ProductID: pid, Qty: qty}
	if s := strings.TrimSpace(in.TotalPrice); s != "" {
		total, _ := strconv.ParseFloat(s, 64)
		p.TotalPrice = &total
	}
	return p
}

// StockChange describes a compensating stock update on a product.
type StockChange struct {
	ProductID ID
	Before    int64
	After     int64
}

// TransactionResult is the outcome of a transaction mutation. StockErr is
// set when the transaction succeeded but the product stock could not be
// adjusted; it never fails the operation itself.
type TransactionResult struct {
	Response protocol.Response
	Stock    *StockChange
	StockErr error
}

// Transactions is the transactions resource. Mutations keep the stock of
// the referenced product in step.
type Transactions struct {
	c *Client
}

// List returns every transaction. An unrecognised body shape yields no rows.
func (t *Transactions) List(ctx context.Context) ([]Transaction, error) {
	_, resp := t.c.send(ctx, protocol.MethodGet, t.c.transactionURL, nil)
	if err := check("list transactions", resp, "failed to load transactions", 200); err != nil {
		return nil, err
	}
	env, err := DecodeList(resp.Data)
	if err != nil {
		return nil, &Error{Op: "list transactions", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if env.Shape == ShapeUnknown {
		t.c.log.Debug("unrecognised transaction list shape")
		return nil, nil
	}
	rows, err := decodeRows[Transaction](env.Rows)
	if err != nil {
		return nil, &Error{Op: "list transactions", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	return rows, nil
}

// Get returns the transaction with id.
func (t *Transactions) Get(ctx context.Context, id ID) (Transaction, error) {
	if err := validation.ID(id.String()); err != nil {
		return Transaction{}, err
	}
	_, resp := t.c.send(ctx, protocol.MethodGet, withID(t.c.transactionURL, id), nil)
	if err := check("get transaction", resp, "failed to load transaction", 200); err != nil {
		return Transaction{}, err
	}
	raw, _, err := DecodeRow(resp.Data)
	if err != nil {
		return Transaction{}, &Error{Op: "get transaction", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if raw == nil {
		return Transaction{}, ErrNotFound
	}
	rows, err := decodeRows[Transaction]([]json.RawMessage{raw})
	if err != nil {
		return Transaction{}, &Error{Op: "get transaction", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if rows[0].ID == "" && rows[0].ProductID == "" {
		return Transaction{}, ErrNotFound
	}
	return rows[0], nil
}

// Create adds a transaction and takes its quantity out of the product's
// stock, never below zero.
func (t *Transactions) Create(ctx context.Context, in TransactionInput) (TransactionResult, error) {
	if err := in.validate(); err != nil {
		return TransactionResult{}, err
	}
	body := in.payload()
	_, resp := t.c.send(ctx, protocol.MethodPost, t.c.transactionURL, body)
	res := TransactionResult{Response: resp}
	if err := check("create transaction", resp, "failed to create transaction", 200, 201); err != nil {
		return res, err
	}

	res.Stock, res.StockErr = t.compensate(ctx, ID(strconv.FormatInt(body.ProductID, 10)), func(stock int64) int64 {
		return max(0, stock-body.Qty)
	})
	return res, nil
}

// Update replaces the transaction with id and moves the product's stock by
// the change in quantity, never below zero. The existing row is loaded
// first to learn its previous quantity.
func (t *Transactions) Update(ctx context.Context, id ID, in TransactionInput) (TransactionResult, error) {
	if err := validation.ID(id.String()); err != nil {
		return TransactionResult{}, err
	}
	if err := in.validate(); err != nil {
		return TransactionResult{}, err
	}
	prev, err := t.Get(ctx, id)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("loading transaction %s: %w", id, err)
	}

	body := in.payload()
	_, resp := t.c.send(ctx, protocol.MethodPut, withID(t.c.transactionURL, id), body)
	res := TransactionResult{Response: resp}
	if err := check("update transaction", resp, "failed to update transaction", 200); err != nil {
		return res, err
	}

	diff := body.Qty - prev.Qty.Int()
	res.Stock, res.StockErr = t.compensate(ctx, ID(strconv.FormatInt(body.ProductID, 10)), func(stock int64) int64 {
		return max(0, stock-diff)
	})
	return res, nil
}

// Delete removes the transaction with id and returns its quantity to the
// product's stock. When the row cannot be loaded beforehand the delete
// still happens and the stock is left alone.
func (t *Transactions) Delete(ctx context.Context, id ID) (TransactionResult, error) {
	if err := validation.ID(id.String()); err != nil {
		return TransactionResult{}, err
	}
	prev, prevErr := t.Get(ctx, id)
	if prevErr != nil {
		t.c.log.Warn("could not load transaction before delete", "id", id, "error", prevErr)
	}

	_, resp := t.c.send(ctx, protocol.MethodDelete, withID(t.c.transactionURL, id), nil)
	res := TransactionResult{Response: resp}
	if err := check("delete transaction", resp, "failed to delete transaction", 200); err != nil {
		return res, err
	}
	if prevErr != nil {
		res.StockErr = fmt.Errorf("stock not restored: %w", prevErr)
		return res, nil
	}

	qty := prev.Qty.Int()
	res.Stock, res.StockErr = t.compensate(ctx, prev.ProductID, func(stock int64) int64 {
		return stock + qty
	})
	return res, nil
}

// ProductName looks up the name of the product a transaction refers to.
func (t *Transactions) ProductName(ctx context.Context, productID ID) (string, error) {
	p, err := t.c.Products.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	return p.DisplayName(), nil
}

// ResolveNames fills ProductName on rows that lack it, fetching each
// product once. Lookup failures leave the name empty.
func (t *Transactions) ResolveNames(ctx context.Context, rows []Transaction) []Transaction {
	names := map[ID]string{}
	out := make([]Transaction, len(rows))
	for i, row := range rows {
		out[i] = row
		if row.ProductName != "" || row.ProductID == "" {
			continue
		}
		name, seen := names[row.ProductID]
		if !seen {
			var err error
			name, err = t.ProductName(ctx, row.ProductID)
			if err != nil {
				t.c.log.Debug("could not resolve product name", "product_id", row.ProductID, "error", err)
			}
			names[row.ProductID] = name
		}
		out[i].ProductName = name
	}
	return out
}

// compensate applies adjust to the stock of productID. Failures are logged
// and returned for the caller to report.
func (t *Transactions) compensate(ctx context.Context, productID ID, adjust func(int64) int64) (*StockChange, error) {
	prod, err := t.c.Products.find(ctx, productID)
	if err != nil {
		err = fmt.Errorf("adjusting stock of product %s: %w", productID, err)
		t.c.log.Warn("stock compensation failed", "product_id", productID, "error", err)
		return nil, err
	}
	change := &StockChange{ProductID: productID, Before: prod.Stock.Int()}
	change.After = adjust(change.Before)

	if _, err := t.c.Products.setStock(ctx, prod, change.After); err != nil {
		err = fmt.Errorf("adjusting stock of product %s: %w", productID, err)
		t.c.log.Warn("stock compensation failed", "product_id", productID, "error", err)
		return nil, err
	}
	t.c.log.Info("stock adjusted", "product_id", productID, "before", change.Before, "after", change.After)
	return change, nil
}
