// Package api talks to the products/transactions backend through a
// protocol.Executor. Every call it makes is handed to a RecordFunc so that
// it shows up in the request history.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sadopc/restclient/internal/logging"
	"github.com/sadopc/restclient/internal/protocol"
)

const (
	DefaultProductURL     = "http://localhost/dbrest/api/produk.php"
	DefaultTransactionURL = "http://localhost/dbrest/api/transaksi.php"
)

// RecordFunc receives every request the client sends with its response.
type RecordFunc func(ctx context.Context, req protocol.Request, resp protocol.Response)

// Error is an application-tier failure: the backend answered, or failed to,
// in a way the operation could not accept.
type Error struct {
	Op       string
	Status   int
	Message  string
	Response protocol.Response
}

func (e *Error) Error() string {
	if e.Status == protocol.StatusTransportFailure {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// Client is the entry point for both resources.
type Client struct {
	exec           protocol.Executor
	productURL     string
	transactionURL string
	record         RecordFunc
	log            *slog.Logger

	Products     *Products
	Transactions *Transactions
}

// Option configures a Client.
type Option func(*Client)

// WithProductURL sets the products endpoint.
func WithProductURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.productURL = u
		}
	}
}

// WithTransactionURL sets the transactions endpoint.
func WithTransactionURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.transactionURL = u
		}
	}
}

// WithRecorder sets the history hook.
func WithRecorder(fn RecordFunc) Option {
	return func(c *Client) { c.record = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a client that sends requests through exec.
func New(exec protocol.Executor, opts ...Option) *Client {
	c := &Client{
		exec:           exec,
		productURL:     DefaultProductURL,
		transactionURL: DefaultTransactionURL,
		log:            logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Products = &Products{c: c}
	c.Transactions = &Transactions{c: c}
	return c
}

// ProductURL returns the products endpoint.
func (c *Client) ProductURL() string { return c.productURL }

// TransactionURL returns the transactions endpoint.
func (c *Client) TransactionURL() string { return c.transactionURL }

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// send executes one call and records it.
func (c *Client) send(ctx context.Context, method protocol.Method, target string, body any) (protocol.Request, protocol.Response) {
	req := protocol.Request{
		URL:     target,
		Method:  method,
		Headers: map[string]string{},
	}
	for k, v := range jsonHeaders {
		req.Headers[k] = v
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return req, protocol.TransportFailure(fmt.Errorf("encoding request body: %w", err), 0)
		}
		req.Body = string(data)
	}

	c.log.Debug("api request", "method", method, "url", target)
	resp := c.exec.Execute(ctx, req)
	c.log.Debug("api response", "method", method, "url", target, "status", resp.Status, "ms", resp.Time)

	if c.record != nil {
		c.record(ctx, req, resp)
	}
	return req, resp
}

// withID appends ?id=<id> to base.
func withID(base string, id ID) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "id=" + url.QueryEscape(strings.TrimSpace(id.String()))
}

// check turns resp into an *Error unless its status is one of ok and the
// backend did not flag the body with a 400 or 500 response code.
func check(op string, resp protocol.Response, fallback string, ok ...int) error {
	if resp.Failed() {
		msg := resp.ErrorMessage()
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Op: op, Status: resp.Status, Message: msg, Response: resp}
	}
	accepted := false
	for _, s := range ok {
		if resp.Status == s {
			accepted = true
			break
		}
	}
	if code := responseCode(resp.Data); accepted && code != 400 && code != 500 {
		return nil
	}
	msg := backendMessage(resp.Data)
	if msg == "" {
		msg = fallback
	}
	return &Error{Op: op, Status: resp.Status, Message: msg, Response: resp}
}
