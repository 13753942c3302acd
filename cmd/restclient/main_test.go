package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/restclient/internal/config"
	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/mock"
	httpclient "github.com/sadopc/restclient/internal/protocol/http"
)

type testApp struct {
	*app
	stdin  *bytes.Buffer
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	store  *history.MemoryStore
}

func newTestApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	cfg.Color = config.ColorNever
	cfg.History.Backend = config.BackendMemory
	ta := &testApp{
		stdin:  &bytes.Buffer{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		store:  history.NewMemoryStore(),
	}
	ta.app = newApp(cfg, ta.stdin, ta.stdout, ta.stderr)
	ta.app.store = ta.store
	return ta
}

func (ta *testApp) run(args ...string) int {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.dispatch(context.Background(), args)
}

func (ta *testApp) entries(t *testing.T) []history.Entry {
	t.Helper()
	entries, err := ta.store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading history: %v", err)
	}
	return entries
}

// echoServer answers every request with its method and body as JSON.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"method": r.Method,
			"body":   body.String(),
			"auth":   r.Header.Get("Authorization"),
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// mockApp returns an app whose products/transactions URLs point at a fresh
// mock backend.
func mockApp(t *testing.T) (*testApp, *mock.Server) {
	t.Helper()
	srv := mock.New(mock.DefaultSeed())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.ProductURL = ts.URL + mock.ProductPath
	cfg.TransactionURL = ts.URL + mock.TransactionPath
	ta := newTestApp(t, cfg)
	ta.exec = httpclient.New()
	return ta, srv
}

func TestVersion(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("version"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(ta.stdout.String(), "restclient dev") {
		t.Errorf("unexpected version output %q", ta.stdout.String())
	}
}

func TestHelp(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("help"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	for _, cmd := range []string{"send", "history", "browse", "products", "transactions", "mock"} {
		if !strings.Contains(ta.stdout.String(), cmd) {
			t.Errorf("help does not mention %q", cmd)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("frobnicate"); code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(ta.stderr.String(), `unknown command "frobnicate"`) {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
}

func TestSendRecordsHistory(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())

	code := ta.run("send", "-X", "POST", "-H", "Authorization: Bearer abc", "-d", `{"title":"hi"}`, ts.URL+"/posts")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	out := ta.stdout.String()
	if !strings.Contains(out, "200 OK") {
		t.Errorf("missing status line in %q", out)
	}
	if !strings.Contains(out, `"auth": "Bearer abc"`) {
		t.Errorf("missing echoed header in %q", out)
	}

	entries := ta.entries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Name != "POST /posts" {
		t.Errorf("Name = %q", e.Name)
	}
	if e.Config.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type not defaulted: %v", e.Config.Headers)
	}
	if e.Response == nil || e.Response.Status != 200 {
		t.Errorf("unexpected response %+v", e.Response)
	}
}

func TestSendNoHistory(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("send", "--no-history", ts.URL); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if n := len(ta.entries(t)); n != 0 {
		t.Errorf("expected no entries, got %d", n)
	}
}

func TestSendFail(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())

	if code := ta.run("send", ts.URL+"/missing"); code != exitOK {
		t.Errorf("404 without --fail: exit code = %d", code)
	}
	if code := ta.run("send", "--fail", ts.URL+"/missing"); code != exitFail {
		t.Errorf("404 with --fail: exit code = %d", code)
	}
}

func TestSendTransportFailure(t *testing.T) {
	ts := echoServer(t)
	url := ts.URL
	ts.Close()

	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("send", url); code != exitFail {
		t.Fatalf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(ta.stdout.String(), "Error:") {
		t.Errorf("missing error line in %q", ta.stdout.String())
	}
	entries := ta.entries(t)
	if len(entries) != 1 || entries[0].Response.Status != 0 {
		t.Errorf("transport failure not recorded: %+v", entries)
	}
}

func TestSendUsageErrors(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	tests := []struct {
		name string
		args []string
	}{
		{"no url", []string{"send"}},
		{"bad method", []string{"send", "-X", "TRACE", "http://localhost/"}},
		{"bad url", []string{"send", "not a url"}},
		{"bad header", []string{"send", "-H", "nocolon", "http://localhost/"}},
		{"invalid json", []string{"send", "-X", "POST", "-d", "{nope", "http://localhost/"}},
		{"flags after url", []string{"send", "http://localhost/", "-X", "POST", "-d", "{}"}},
		{"curl with url argument", []string{"send", "--curl", "curl http://localhost/", "http://localhost/"}},
		{"curl without url", []string{"send", "--curl", "curl -H 'Accept: */*'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := ta.run(tt.args...); code != exitUsage {
				t.Errorf("exit code = %d, want %d", code, exitUsage)
			}
		})
	}
	if n := len(ta.entries(t)); n != 0 {
		t.Errorf("rejected requests were recorded: %d", n)
	}
}

func TestSendRejectsFlagsAfterURL(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("send", ts.URL, "-X", "POST", "-d", `{"a":1}`); code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(ta.stderr.String(), "flags must come before the URL") {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
	if n := len(ta.entries(t)); n != 0 {
		t.Errorf("request was sent: %d entries", n)
	}
}

func TestSendRawSkipsJSONCheck(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("send", "-X", "POST", "--raw", "-d", "{nope", ts.URL); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if !strings.Contains(ta.stdout.String(), `"body": "{nope"`) {
		t.Errorf("body not sent verbatim: %q", ta.stdout.String())
	}
}

func TestSendFromCurl(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	cmd := "curl -X DELETE " + ts.URL + "/posts/1"
	if code := ta.run("send", "--curl", cmd); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	entries := ta.entries(t)
	if len(entries) != 1 || entries[0].Name != "DELETE /posts/1" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestSendJSONOutput(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("send", "--json", ts.URL); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	var out struct {
		Request  map[string]any `json:"request"`
		Response map[string]any `json:"response"`
	}
	if err := json.Unmarshal(ta.stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, ta.stdout.String())
	}
	if out.Request["method"] != "GET" || out.Response["status"] != float64(200) {
		t.Errorf("unexpected output %+v", out)
	}
}

func sendN(t *testing.T, ta *testApp, url string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if code := ta.run("send", url+p); code != exitOK {
			t.Fatalf("send %s: exit code %d", p, code)
		}
	}
}

func TestHistoryList(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())

	if code := ta.run("history", "list"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "No history yet") {
		t.Errorf("expected placeholder, got %q", ta.stdout.String())
	}

	sendN(t, ta, ts.URL, "/users", "/orders")
	if code := ta.run("history", "list"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	out := ta.stdout.String()
	users, orders := strings.Index(out, "/users"), strings.Index(out, "/orders")
	if users < 0 || orders < 0 || orders > users {
		t.Errorf("expected newest first:\n%s", out)
	}

	if code := ta.run("history", "list", "--json", "--search", "ordr"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	var listed []history.Entry
	if err := json.Unmarshal(ta.stdout.Bytes(), &listed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "GET /orders" {
		t.Errorf("unexpected search result %+v", listed)
	}
}

func TestHistoryShow(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	sendN(t, ta, ts.URL, "/users")
	id := ta.entries(t)[0].ID

	for _, ref := range []string{id, "1", "#1"} {
		if code := ta.run("history", "show", ref); code != exitOK {
			t.Fatalf("show %s: exit code %d", ref, code)
		}
		if !strings.Contains(ta.stdout.String(), "GET /users") {
			t.Errorf("show %s: %q", ref, ta.stdout.String())
		}
	}

	if code := ta.run("history", "show", "7"); code != exitFail {
		t.Errorf("unknown entry: exit code = %d", code)
	}
	if code := ta.run("history", "show"); code != exitUsage {
		t.Errorf("missing id: exit code = %d", code)
	}
}

func TestHistoryRemove(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	sendN(t, ta, ts.URL, "/a", "/b", "/c")

	// Positions are resolved before anything is removed.
	if code := ta.run("history", "rm", "1", "3", "nope"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "Removed 2 entries") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
	if !strings.Contains(ta.stderr.String(), `no history entry "nope"`) {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
	entries := ta.entries(t)
	if len(entries) != 1 || entries[0].Name != "GET /b" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestHistoryClear(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())

	if code := ta.run("history", "clear"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "already empty") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}

	sendN(t, ta, ts.URL, "/a", "/b")

	ta.stdin.WriteString("n\n")
	if code := ta.run("history", "clear"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "Aborted") || len(ta.entries(t)) != 2 {
		t.Errorf("declined clear changed history: %q", ta.stdout.String())
	}

	ta.stdin.WriteString("y\n")
	if code := ta.run("history", "clear"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if len(ta.entries(t)) != 0 {
		t.Error("history not cleared")
	}
}

func TestHistoryClearYes(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	sendN(t, ta, ts.URL, "/a")
	if code := ta.run("history", "clear", "--yes"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "Removed 1 entries") || len(ta.entries(t)) != 0 {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestHistoryExport(t *testing.T) {
	ts := echoServer(t)
	ta := newTestApp(t, config.DefaultConfig())
	sendN(t, ta, ts.URL, "/first", "/second")

	if code := ta.run("history", "export", "--format", "curl"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	out := ta.stdout.String()
	first, second := strings.Index(out, "# GET /first"), strings.Index(out, "# GET /second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("curl export not oldest first:\n%s", out)
	}
	if !strings.Contains(out, "curl '"+ts.URL+"/first'") {
		t.Errorf("missing curl command:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "session.har")
	if code := ta.run("history", "export", "--output", path); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var har struct {
		Log struct {
			Entries []json.RawMessage `json:"entries"`
		} `json:"log"`
	}
	if err := json.Unmarshal(data, &har); err != nil {
		t.Fatalf("invalid HAR: %v", err)
	}
	if len(har.Log.Entries) != 2 {
		t.Errorf("HAR has %d entries", len(har.Log.Entries))
	}

	if code := ta.run("history", "export", "--format", "xml"); code != exitUsage {
		t.Errorf("bad format: exit code = %d", code)
	}
}

func TestHistoryUnknownSubcommand(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	if code := ta.run("history"); code != exitUsage {
		t.Errorf("no subcommand: exit code = %d", code)
	}
	if code := ta.run("history", "frob"); code != exitUsage {
		t.Errorf("unknown subcommand: exit code = %d", code)
	}
}

func TestProductsList(t *testing.T) {
	ta, _ := mockApp(t)
	if code := ta.run("products", "list"); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	out := ta.stdout.String()
	for _, want := range []string{"Diamond 86", "Robux 400", "Rp 20.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if n := len(ta.entries(t)); n != 1 {
		t.Errorf("expected the list call to be recorded, got %d entries", n)
	}
}

func TestProductsCreateAndUpdate(t *testing.T) {
	ta, srv := mockApp(t)

	code := ta.run("products", "create",
		"--name", "Diamond 172", "--category", "Mobile Legends: Bang Bang",
		"--price", "40000", "--stock", "10", "--description", "172 diamonds")
	if code != exitOK {
		t.Fatalf("create: exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if !strings.Contains(ta.stdout.String(), "Product created") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
	if len(srv.Products()) != 4 {
		t.Fatalf("expected 4 products, got %d", len(srv.Products()))
	}

	if code := ta.run("products", "update", "1", "--stock", "5"); code != exitOK {
		t.Fatalf("update: exit code = %d, stderr %q", code, ta.stderr.String())
	}
	p, _ := srv.Product(1)
	if p.Stock != 5 || p.Name != "Diamond 86" || p.Price != 20000 {
		t.Errorf("update did not keep unspecified fields: %+v", p)
	}
}

func TestProductsCreateInvalid(t *testing.T) {
	ta, srv := mockApp(t)
	code := ta.run("products", "create", "--name", "X", "--category", "Chess", "--price", "-1")
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(ta.stderr.String(), "invalid input") {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
	if len(srv.Products()) != 3 {
		t.Error("invalid product was created")
	}
}

func TestProductsDeleteAndGet(t *testing.T) {
	ta, _ := mockApp(t)
	if code := ta.run("products", "delete", "3"); code != exitOK {
		t.Fatalf("delete: exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if code := ta.run("products", "get", "3"); code != exitFail {
		t.Errorf("get deleted product: exit code = %d", code)
	}
	if code := ta.run("products", "get", "2", "--json"); code != exitOK {
		t.Fatalf("get: exit code = %d", code)
	}
	if !strings.Contains(ta.stdout.String(), "Genesis Crystal 300") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestTransactionsCreateAdjustsStock(t *testing.T) {
	ta, srv := mockApp(t)

	code := ta.run("transactions", "create", "--product", "1", "--qty", "3")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	out := ta.stdout.String()
	if !strings.Contains(out, "Transaction created") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(out, "Stock of product 1: 100 -> 97") {
		t.Errorf("missing stock change in %q", out)
	}
	if p, _ := srv.Product(1); p.Stock != 97 {
		t.Errorf("stock = %d, want 97", p.Stock)
	}
}

func TestTransactionsListResolvesNames(t *testing.T) {
	ta, _ := mockApp(t)
	if code := ta.run("transactions", "list"); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if !strings.Contains(ta.stdout.String(), "Diamond 86") {
		t.Errorf("product name not resolved:\n%s", ta.stdout.String())
	}
}

func TestTransactionsDeleteRestocks(t *testing.T) {
	ta, srv := mockApp(t)
	if code := ta.run("transactions", "delete", "1"); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if p, _ := srv.Product(1); p.Stock != 102 {
		t.Errorf("stock = %d, want 102", p.Stock)
	}
}

func TestMockUsageErrors(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	for _, args := range [][]string{
		{"mock", "--error-rate", "2"},
		{"mock", "--envelope", "xml"},
		{"mock", "--port", "70000"},
	} {
		if code := ta.run(args...); code != exitUsage {
			t.Errorf("%v: exit code = %d, want %d", args, code, exitUsage)
		}
	}
}

func TestTransactionsUpdateRecomputesTotal(t *testing.T) {
	ta, srv := mockApp(t)
	if code := ta.run("transactions", "update", "1", "--qty", "4"); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, ta.stderr.String())
	}
	if !strings.Contains(ta.stdout.String(), "Stock of product 1: 100 -> 98") {
		t.Errorf("missing stock change in %q", ta.stdout.String())
	}
	if p, _ := srv.Product(1); p.Stock != 98 {
		t.Errorf("stock = %d, want 98", p.Stock)
	}

	if code := ta.run("transactions", "get", "1", "--json"); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	var tx struct {
		Qty   float64 `json:"qty"`
		Total float64 `json:"total_harga"`
	}
	if err := json.Unmarshal(ta.stdout.Bytes(), &tx); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, ta.stdout.String())
	}
	if tx.Qty != 4 || tx.Total != 80000 {
		t.Errorf("qty = %v, total = %v; want 4 and 80000", tx.Qty, tx.Total)
	}
}

func TestCompletion(t *testing.T) {
	ta := newTestApp(t, config.DefaultConfig())
	tests := map[string]string{
		"bash": "complete -F _restclient restclient",
		"zsh":  "#compdef restclient",
		"fish": "complete -c restclient",
	}
	for shell, want := range tests {
		if code := ta.run("completion", shell); code != exitOK {
			t.Fatalf("%s: exit code = %d", shell, code)
		}
		if !strings.Contains(ta.stdout.String(), want) {
			t.Errorf("%s completion missing %q", shell, want)
		}
	}
	if code := ta.run("completion", "powershell"); code != exitUsage {
		t.Errorf("unsupported shell: exit code = %d", code)
	}
	if code := ta.run("completion"); code != exitUsage {
		t.Errorf("missing shell: exit code = %d", code)
	}
}
