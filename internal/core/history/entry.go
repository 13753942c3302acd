package history

import (
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/restclient/internal/protocol"
)

// Entry is one recorded request/response pair.
type Entry struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    protocol.Request   `json:"config"`
	Response  *protocol.Response `json:"response,omitempty"`
	Timestamp int64              `json:"timestamp"` // ms since epoch
}

// Time returns the creation time of the entry.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// clone returns a copy of e that shares nothing mutable with it.
func (e Entry) clone() Entry {
	c := e
	c.Config = e.Config.Clone()
	if e.Response != nil {
		r := e.Response.Clone()
		c.Response = &r
	}
	return c
}

// target is the outcome of interpreting a request URL for display.
type target interface {
	label(method protocol.Method) string
}

// parsedTarget is an absolute URL reduced to its path.
type parsedTarget struct {
	path string
}

func (t parsedTarget) label(method protocol.Method) string {
	return string(method) + " " + t.path
}

// rawTarget is a URL that could not be parsed; it is shown verbatim.
type rawTarget struct {
	raw string
}

func (t rawTarget) label(method protocol.Method) string {
	return string(method) + " " + t.raw
}

// hierarchical schemes always have a path of at least "/".
var hierarchical = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true, "file": true,
}

func parseTarget(raw string) target {
	s := strings.TrimSpace(raw)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return rawTarget{raw: raw}
	}
	if u.Opaque != "" {
		return parsedTarget{path: u.Opaque}
	}
	if hierarchical[strings.ToLower(u.Scheme)] {
		if u.Host == "" && u.Scheme != "file" {
			return rawTarget{raw: raw}
		}
		p := u.EscapedPath()
		if p == "" {
			p = "/"
		}
		return parsedTarget{path: p}
	}
	return parsedTarget{path: u.EscapedPath()}
}

// Label names an entry "<METHOD> <path>", or "<METHOD> <url>" when the URL
// is not absolute.
func Label(method protocol.Method, rawURL string) string {
	return parseTarget(rawURL).label(method)
}
