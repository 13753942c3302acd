// Package mock serves an in-memory imitation of the products/transactions
// PHP backend, for local development and tests.
package mock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/restclient/internal/logging"
)

const (
	ProductPath     = "/dbrest/api/produk.php"
	TransactionPath = "/dbrest/api/transaksi.php"
)

// Envelope selects how list responses are wrapped.
type Envelope string

const (
	EnvelopeBare   Envelope = "bare"   // [..]
	EnvelopeData   Envelope = "data"   // {"response":200,"data":[..]}
	EnvelopeResult Envelope = "result" // {"response":200,"result":[..]}
)

// ParseEnvelope validates an envelope name.
func ParseEnvelope(s string) (Envelope, error) {
	switch e := Envelope(strings.ToLower(strings.TrimSpace(s))); e {
	case EnvelopeBare, EnvelopeData, EnvelopeResult:
		return e, nil
	}
	return "", fmt.Errorf("unknown envelope %q (want bare, data or result)", s)
}

// Route is one endpoint served by the mock.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Server is the mock backend.
type Server struct {
	port       int
	latency    time.Duration
	errorRate  float64
	corsOrigin string
	envelope   Envelope
	now        func() time.Time
	log        *slog.Logger

	mu           sync.Mutex
	products     map[int64]Product
	transactions map[int64]Transaction
	nextProduct  int64
	nextTx       int64
}

// Option configures a Server.
type Option func(*Server)

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithErrorRate fails the given fraction of requests with a 500.
func WithErrorRate(rate float64) Option {
	return func(s *Server) { s.errorRate = rate }
}

// WithCORSOrigin sets Access-Control-Allow-Origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithEnvelope sets the list envelope.
func WithEnvelope(e Envelope) Option {
	return func(s *Server) { s.envelope = e }
}

// WithClock overrides the clock used for transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a server holding a copy of seed.
func New(seed Seed, opts ...Option) *Server {
	s := &Server{
		port:         8080,
		corsOrigin:   "*",
		envelope:     EnvelopeData,
		now:          time.Now,
		log:          logging.Nop(),
		products:     make(map[int64]Product),
		transactions: make(map[int64]Transaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range seed.Products {
		s.products[p.ID] = p
		s.nextProduct = max(s.nextProduct, p.ID)
	}
	for _, t := range seed.Transactions {
		s.transactions[t.ID] = t
		s.nextTx = max(s.nextTx, t.ID)
	}
	return s
}

// Routes lists the served endpoints.
func (s *Server) Routes() []Route {
	var routes []Route
	for _, path := range []string{ProductPath, TransactionPath} {
		for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			routes = append(routes, Route{Method: m, Path: path})
		}
	}
	return routes
}

// Handler returns the HTTP handler. Any path ending in produk.php or
// transaksi.php is served, so the mock can sit behind any prefix.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.serve(rec, r)
		s.log.Info("mock request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.errorRate > 0 && rand.Float64() < s.errorRate {
		writeJSON(w, http.StatusInternalServerError, reply(500, "Simulated server error", nil))
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/produk.php"):
		s.serveProducts(w, r)
	case strings.HasSuffix(r.URL.Path, "/transaksi.php"):
		s.serveTransactions(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":            "Route not found",
			"available_routes": s.Routes(),
		})
	}
}

func (s *Server) setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", s.corsOrigin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// Start listens on the configured port until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("mock server listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down mock server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) serveProducts(w http.ResponseWriter, r *http.Request) {
	id, hasID, ok := queryID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()
		if hasID {
			p, found := s.products[id]
			if !found {
				writeJSON(w, http.StatusNotFound, reply(404, "product not found", nil))
				return
			}
			s.writeRow(w, p)
			return
		}
		rows := make([]Product, 0, len(s.products))
		for _, p := range s.products {
			rows = append(rows, p)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
		s.writeList(w, rows)

	case http.MethodPost:
		in, msg := decodeProduct(r)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, reply(400, msg, nil))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextProduct++
		in.ID = s.nextProduct
		s.products[in.ID] = in
		writeJSON(w, http.StatusCreated, reply(201, "product created", in))

	case http.MethodPut, http.MethodPatch:
		if !requireID(w, hasID) {
			return
		}
		in, msg := decodeProduct(r)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, reply(400, msg, nil))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, found := s.products[id]; !found {
			writeJSON(w, http.StatusNotFound, reply(404, "product not found", nil))
			return
		}
		in.ID = id
		s.products[id] = in
		writeJSON(w, http.StatusOK, reply(200, "product updated", in))

	case http.MethodDelete:
		if !requireID(w, hasID) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, found := s.products[id]; !found {
			writeJSON(w, http.StatusNotFound, reply(404, "product not found", nil))
			return
		}
		delete(s.products, id)
		writeJSON(w, http.StatusOK, reply(200, "product deleted", nil))

	default:
		writeJSON(w, http.StatusMethodNotAllowed, reply(405, "method not allowed", nil))
	}
}

func (s *Server) serveTransactions(w http.ResponseWriter, r *http.Request) {
	id, hasID, ok := queryID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()
		if hasID {
			t, found := s.transactions[id]
			if !found {
				writeJSON(w, http.StatusNotFound, reply(404, "transaction not found", nil))
				return
			}
			s.writeRow(w, t)
			return
		}
		rows := make([]Transaction, 0, len(s.transactions))
		for _, t := range s.transactions {
			rows = append(rows, t)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
		s.writeList(w, rows)

	case http.MethodPost:
		in, msg := decodeTransaction(r)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, reply(400, msg, nil))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		p, found := s.products[in.ProductID]
		if !found {
			writeJSON(w, http.StatusOK, reply(400, "product does not exist", nil))
			return
		}
		s.nextTx++
		in.ID = s.nextTx
		in.Date = s.now().Format("2006-01-02 15:04:05")
		in.TotalPrice = p.Price * float64(in.Qty)
		s.transactions[in.ID] = in
		writeJSON(w, http.StatusCreated, reply(201, "transaction created", in))

	case http.MethodPut, http.MethodPatch:
		if !requireID(w, hasID) {
			return
		}
		in, msg := decodeTransaction(r)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, reply(400, msg, nil))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		prev, found := s.transactions[id]
		if !found {
			writeJSON(w, http.StatusNotFound, reply(404, "transaction not found", nil))
			return
		}
		p, found := s.products[in.ProductID]
		if !found {
			writeJSON(w, http.StatusOK, reply(400, "product does not exist", nil))
			return
		}
		in.ID = id
		in.Date = prev.Date
		if in.TotalPrice == 0 {
			in.TotalPrice = p.Price * float64(in.Qty)
		}
		s.transactions[id] = in
		writeJSON(w, http.StatusOK, reply(200, "transaction updated", in))

	case http.MethodDelete:
		if !requireID(w, hasID) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, found := s.transactions[id]; !found {
			writeJSON(w, http.StatusNotFound, reply(404, "transaction not found", nil))
			return
		}
		delete(s.transactions, id)
		writeJSON(w, http.StatusOK, reply(200, "transaction deleted", nil))

	default:
		writeJSON(w, http.StatusMethodNotAllowed, reply(405, "method not allowed", nil))
	}
}

// Products returns a snapshot of the products table ordered by id.
func (s *Server) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Product returns one product by id.
func (s *Server) Product(id int64) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Server) writeList(w http.ResponseWriter, rows any) {
	switch s.envelope {
	case EnvelopeBare:
		writeJSON(w, http.StatusOK, rows)
	case EnvelopeResult:
		writeJSON(w, http.StatusOK, map[string]any{"response": 200, "result": rows})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"response": 200, "data": rows})
	}
}

func (s *Server) writeRow(w http.ResponseWriter, row any) {
	switch s.envelope {
	case EnvelopeBare:
		writeJSON(w, http.StatusOK, row)
	case EnvelopeResult:
		writeJSON(w, http.StatusOK, map[string]any{"response": 200, "result": row})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"response": 200, "data": row})
	}
}

func reply(code int, message string, data any) map[string]any {
	out := map[string]any{"response": code, "message": message}
	if data != nil {
		out["data"] = data
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// queryID reads ?id=. A malformed id is answered with a 400.
func queryID(w http.ResponseWriter, r *http.Request) (id int64, present, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, false, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, reply(400, "id must be numeric", nil))
		return 0, false, false
	}
	return n, true, true
}

func requireID(w http.ResponseWriter, hasID bool) bool {
	if !hasID {
		writeJSON(w, http.StatusBadRequest, reply(400, "id is required", nil))
	}
	return hasID
}

func decodeBody(r *http.Request) (map[string]any, string) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "invalid JSON body"
	}
	return body, ""
}

func decodeProduct(r *http.Request) (Product, string) {
	body, msg := decodeBody(r)
	if msg != "" {
		return Product{}, msg
	}
	p := Product{
		Name:        str(body["nama_produk"]),
		Category:    str(body["kategori"]),
		Description: str(body["deskripsi"]),
	}
	if p.Name == "" {
		return Product{}, "nama_produk is required"
	}
	price, _ := num(body["harga"])
	stock, _ := num(body["stok"])
	p.Price = price
	p.Stock = int64(stock)
	if img := str(body["gambar"]); img != "" {
		if _, err := base64.StdEncoding.DecodeString(img); err != nil {
			return Product{}, "gambar must be base64"
		}
		p.Image = &img
	}
	return p, ""
}

func decodeTransaction(r *http.Request) (Transaction, string) {
	body, msg := decodeBody(r)
	if msg != "" {
		return Transaction{}, msg
	}
	pid, ok := num(body["product_id"])
	if !ok {
		return Transaction{}, "product_id is required"
	}
	qty, ok := num(body["qty"])
	if !ok {
		return Transaction{}, "qty is required"
	}
	total, _ := num(body["total_harga"])
	return Transaction{ProductID: int64(pid), Qty: int64(qty), TotalPrice: total}, ""
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
