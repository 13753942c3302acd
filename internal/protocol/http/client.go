package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/sadopc/restclient/internal/logging"
	"github.com/sadopc/restclient/internal/protocol"
)

// ProxyConfig holds proxy settings.
type ProxyConfig struct {
	URL     string // http://, https://, or socks5:// proxy URL
	NoProxy string // comma-separated list of hosts to bypass proxy
}

// Client implements protocol.Executor over net/http.
type Client struct {
	httpClient *http.Client
	proxyConf  *ProxyConfig
	tlsConf    *tls.Config
	log        *slog.Logger
}

// New creates a new HTTP client. There is no request timeout unless one is
// set with SetTimeout.
func New() *Client {
	return &Client{
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		log: logging.Nop(),
	}
}

// SetTimeout sets the client timeout. Zero disables it.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// SetLogger sets the logger used for per-request debug records.
func (c *Client) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	c.log = l
}

// SetProxy configures proxy settings for the client. An empty proxyURL
// removes the proxy. On error the previous settings are kept.
func (c *Client) SetProxy(proxyURL, noProxy string) error {
	var conf *ProxyConfig
	if proxyURL != "" {
		conf = &ProxyConfig{URL: proxyURL, NoProxy: noProxy}
	}
	rt, err := newTransport(conf, c.tlsConf)
	if err != nil {
		return err
	}
	c.proxyConf = conf
	c.httpClient.Transport = rt
	return nil
}

// SetTLS applies opts to every request. The zero TLSOptions restores the
// defaults. On error the previous settings are kept.
func (c *Client) SetTLS(opts TLSOptions) error {
	conf, err := opts.build()
	if err != nil {
		return err
	}
	rt, err := newTransport(c.proxyConf, conf)
	if err != nil {
		return err
	}
	c.tlsConf = conf
	c.httpClient.Transport = rt
	return nil
}

// newTransport combines proxy and TLS settings. It returns nil, meaning
// http.DefaultTransport, when neither is set.
func newTransport(proxyConf *ProxyConfig, tlsConf *tls.Config) (http.RoundTripper, error) {
	if proxyConf == nil && tlsConf == nil {
		return nil, nil
	}
	var t *http.Transport
	if proxyConf != nil {
		rt, err := buildTransport(proxyConf)
		if err != nil {
			return nil, err
		}
		t = rt.(*http.Transport)
	} else {
		t = http.DefaultTransport.(*http.Transport).Clone()
	}
	t.TLSClientConfig = tlsConf
	return t, nil
}

// Execute sends req and normalizes the outcome. It never returns an error;
// transport failures come back as a Response with Status 0.
func (c *Client) Execute(ctx context.Context, req protocol.Request) protocol.Response {
	start := time.Now()
	resp, err := c.do(ctx, req, start)
	if err != nil {
		elapsed := elapsedMillis(start)
		c.log.Debug("request failed",
			"method", req.Method, "url", req.URL, "elapsed_ms", elapsed, "error", err)
		return protocol.TransportFailure(err, elapsed)
	}
	c.log.Debug("request completed",
		"method", req.Method, "url", req.URL, "status", resp.Status, "elapsed_ms", resp.Time, "size", resp.Size)
	return resp
}

func (c *Client) do(ctx context.Context, req protocol.Request, start time.Time) (protocol.Response, error) {
	var body io.Reader
	if req.Method.SendsBody() && req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return protocol.Response{}, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return protocol.Response{}, err
	}
	defer resp.Body.Close()

	headers := collectHeaders(resp.Header)
	data, err := decodeBody(resp.Body, headers["content-type"])
	if err != nil {
		return protocol.Response{}, err
	}

	return protocol.Response{
		Status:     resp.StatusCode,
		StatusText: reasonPhrase(resp),
		Headers:    headers,
		Data:       data,
		Time:       elapsedMillis(start),
		Size:       SerializedSize(data),
	}, nil
}

// collectHeaders flattens h into lower-cased keys, joining repeated values.
func collectHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return out
}

// decodeBody classifies the body by content type. A JSON decode failure is
// returned as an error and ends up as a transport failure.
func decodeBody(r io.Reader, contentType string) (any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case strings.Contains(contentType, "application/json"):
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding JSON response: %w", err)
		}
		return v, nil
	case strings.Contains(contentType, "text/"):
		return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
	default:
		return BlobPlaceholder(len(raw), contentType), nil
	}
}

// BlobPlaceholder describes a binary body that was read and discarded.
func BlobPlaceholder(n int, contentType string) string {
	return fmt.Sprintf("[Blob: %d bytes, type: %s]", n, strings.ToLower(contentType))
}

// SerializedSize is the length of the JSON encoding of v. It approximates
// the body size; it is not the number of bytes on the wire.
func SerializedSize(v any) int {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return 0
	}
	return len(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// reasonPhrase returns the status text without the numeric code.
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

func elapsedMillis(start time.Time) int64 {
	ms := math.Round(float64(time.Since(start).Microseconds()) / 1000)
	if ms < 0 {
		return 0
	}
	return int64(ms)
}

// buildTransport creates an http.Transport configured with proxy settings.
func buildTransport(conf *ProxyConfig) (http.RoundTripper, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	parsed, err := url.Parse(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{
				User:     parsed.User.Username(),
				Password: password,
			}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	case "http", "https":
		if conf.NoProxy != "" {
			noProxyHosts := parseNoProxy(conf.NoProxy)
			transport.Proxy = func(r *http.Request) (*url.URL, error) {
				if shouldBypassProxy(r.URL.Hostname(), noProxyHosts) {
					return nil, nil
				}
				return parsed, nil
			}
		} else {
			transport.Proxy = http.ProxyURL(parsed)
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}

	return transport, nil
}

// parseNoProxy splits a comma-separated no-proxy string into trimmed host entries.
func parseNoProxy(noProxy string) []string {
	parts := strings.Split(noProxy, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			hosts = append(hosts, strings.ToLower(p))
		}
	}
	return hosts
}

// shouldBypassProxy checks whether a host should bypass the proxy.
func shouldBypassProxy(host string, noProxyHosts []string) bool {
	host = strings.ToLower(host)
	for _, h := range noProxyHosts {
		if h == host {
			return true
		}
		// .example.com matches any subdomain
		if strings.HasPrefix(h, ".") && strings.HasSuffix(host, h) {
			return true
		}
	}
	return false
}
