package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	curlimport "github.com/sadopc/restclient/internal/import/curl"
	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/validation"
)

// headerFlags collects repeated -H "Key: Value" flags.
type headerFlags map[string]string

func (h headerFlags) String() string {
	parts := make([]string, 0, len(h))
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, ", ")
}

func (h headerFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("header %q must look like \"Key: Value\"", s)
	}
	h[strings.TrimSpace(k)] = strings.TrimSpace(v)
	return nil
}

func (a *app) sendCmd(ctx context.Context, args []string) int {
	fs := a.newFlagSet("send")
	method := "GET"
	fs.StringVar(&method, "X", method, "HTTP method: GET, POST, PUT, PATCH, DELETE")
	fs.StringVar(&method, "method", method, "HTTP method (same as -X)")
	headers := headerFlags{}
	fs.Var(headers, "H", "Request header \"Key: Value\" (repeatable)")
	var body string
	fs.StringVar(&body, "d", "", "Request body; @file reads it from a file")
	fs.StringVar(&body, "data", "", "Request body (same as -d)")
	curlFlag := fs.String("curl", "", "Build the request from a curl command line")
	noHistory := fs.Bool("no-history", false, "Do not record the request in history")
	raw := fs.Bool("raw", false, "Send the body as-is without JSON validation")
	jsonOut := fs.Bool("json", false, "Print the request and response as JSON")
	failFlag := fs.Bool("fail", false, "Exit with status 1 on HTTP 4xx/5xx responses")

	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient send [flags] <url>\n\n")
		fmt.Fprintf(a.stderr, "Send an HTTP request, print the response and record both in history.\n")
		fmt.Fprintf(a.stderr, "Bodies are only sent for POST, PUT and PATCH.\n")
		fmt.Fprintf(a.stderr, "Flags must come before the URL.\n\n")
		fmt.Fprintf(a.stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(a.stderr, "\nExamples:\n")
		fmt.Fprintf(a.stderr, "  restclient send https://jsonplaceholder.typicode.com/posts/1\n")
		fmt.Fprintf(a.stderr, "  restclient send -X POST -d '{\"title\":\"hi\"}' https://example.com/posts\n")
		fmt.Fprintf(a.stderr, "  restclient send -H 'Authorization: Bearer t0k3n' https://example.com/me\n")
		fmt.Fprintf(a.stderr, "  restclient send --curl \"curl -X DELETE https://example.com/posts/1\"\n")
	}

	if code, ok := parse(fs, args); !ok {
		return code
	}

	if n := fs.NArg(); n > 1 || (*curlFlag != "" && n > 0) {
		extra := fs.Args()
		if *curlFlag == "" {
			extra = extra[1:]
		}
		return a.usageError(fs, "unexpected arguments %q (flags must come before the URL)", extra)
	}

	var req protocol.Request
	if *curlFlag != "" {
		parsed, err := curlimport.ParseCurl(*curlFlag)
		if err != nil {
			return a.usageError(fs, "invalid curl command: %v", err)
		}
		req = parsed
	} else {
		if fs.NArg() < 1 {
			return a.usageError(fs, "URL is required")
		}
		m, err := protocol.ParseMethod(method)
		if err != nil {
			return a.usageError(fs, "%v", err)
		}
		if strings.HasPrefix(body, "@") {
			data, err := os.ReadFile(strings.TrimPrefix(body, "@"))
			if err != nil {
				return a.usageError(fs, "reading body: %v", err)
			}
			body = string(data)
		}
		req = protocol.Request{URL: fs.Arg(0), Method: m, Headers: map[string]string(headers), Body: body}
		if req.Body != "" && req.Method.SendsBody() && !hasHeader(req.Headers, "Content-Type") {
			req.Headers["Content-Type"] = "application/json"
		}
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	if err := validation.URL(req.URL); err != nil {
		return a.usageError(fs, "%v", err)
	}
	if err := validation.Headers(req.Headers); err != nil {
		return a.usageError(fs, "%v", err)
	}
	if !*raw && req.Method.SendsBody() && isJSONContent(req.Headers) {
		if _, err := validation.JSON(req.Body); err != nil {
			return a.usageError(fs, "body: %v (use --raw to send it anyway)", err)
		}
	}

	exec, err := a.executor()
	if err != nil {
		return a.fail(err)
	}
	resp := exec.Execute(ctx, req)

	if !*noHistory {
		ledger, closeFn, err := a.openLedger(ctx)
		if err != nil {
			a.log.Warn("history unavailable", "error", err)
		} else {
			if _, err := ledger.Record(ctx, req, &resp); err != nil {
				a.log.Warn("recording history", "error", err)
			}
			closeFn()
		}
	}

	p := a.printer()
	if *jsonOut {
		if err := p.JSON(map[string]any{"request": req, "response": resp}); err != nil {
			return a.fail(err)
		}
	} else {
		p.Response(resp)
	}

	switch {
	case resp.Failed():
		return exitFail
	case *failFlag && resp.Status >= 400:
		return exitFail
	}
	return exitOK
}

func hasHeader(h map[string]string, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// isJSONContent reports whether the declared content type is JSON. A
// request without a Content-Type is treated as JSON.
func isJSONContent(h map[string]string) bool {
	for k, v := range h {
		if strings.EqualFold(k, "Content-Type") {
			return strings.Contains(strings.ToLower(v), "json")
		}
	}
	return true
}
