// Package har exports request history as HAR 1.2.
package har

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/restclient/internal/core/history"
	"github.com/sadopc/restclient/internal/protocol"
)

// HAR represents the HAR 1.2 format for export.
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog is the top-level log object.
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator identifies the tool that created the HAR.
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single request/response pair.
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Cache           struct{}    `json:"cache"`
	Timings         HARTimings  `json:"timings"`
	Comment         string      `json:"comment,omitempty"`
}

// HARRequest is the request portion of an entry.
type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Headers     []HARHeader  `json:"headers"`
	QueryString []HARQuery   `json:"queryString"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

// HARResponse is the response portion of an entry.
type HARResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
	Content     HARContent  `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// HARHeader is a name/value pair for headers.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARQuery is a name/value pair for query string parameters.
type HARQuery struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the body of a request.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARContent is the body of a response.
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARTimings holds timing info for an entry. Only the total is known, so it
// is reported as wait time.
type HARTimings struct {
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	SSL     float64 `json:"ssl"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// Export creates a HAR 1.2 document from history entries, oldest first.
func Export(entries []history.Entry, creatorVersion string) ([]byte, error) {
	out := make([]HAREntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, buildEntry(entries[i]))
	}

	har := HAR{
		Log: HARLog{
			Version: "1.2",
			Creator: HARCreator{Name: "restclient", Version: creatorVersion},
			Entries: out,
		},
	}
	return json.MarshalIndent(har, "", "  ")
}

func buildEntry(e history.Entry) HAREntry {
	entry := HAREntry{
		StartedDateTime: e.Time().UTC().Format(time.RFC3339Nano),
		Request:         buildHARRequest(e.Config),
		Comment:         e.Name,
	}
	resp := protocol.Response{Headers: map[string]string{}}
	if e.Response != nil {
		resp = *e.Response
	}
	entry.Time = float64(resp.Time)
	entry.Response = buildHARResponse(resp)
	entry.Timings = HARTimings{DNS: -1, Connect: -1, SSL: -1, Wait: float64(resp.Time)}
	return entry
}

func buildHARRequest(req protocol.Request) HARRequest {
	harReq := HARRequest{
		Method:      string(req.Method),
		URL:         req.URL,
		HTTPVersion: "HTTP/1.1",
		Headers:     sortedHeaders(req.Headers),
		QueryString: []HARQuery{},
		HeadersSize: -1,
		BodySize:    0,
	}

	if u, err := url.Parse(req.URL); err == nil {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range q[k] {
				harReq.QueryString = append(harReq.QueryString, HARQuery{Name: k, Value: v})
			}
		}
	}

	if req.Body != "" && req.Method.SendsBody() {
		mimeType := "text/plain"
		for k, v := range req.Headers {
			if strings.EqualFold(k, "Content-Type") {
				mimeType = v
			}
		}
		harReq.PostData = &HARPostData{MimeType: mimeType, Text: req.Body}
		harReq.BodySize = len(req.Body)
	}

	return harReq
}

func buildHARResponse(resp protocol.Response) HARResponse {
	text := contentText(resp.Data)
	return HARResponse{
		Status:      resp.Status,
		StatusText:  resp.StatusText,
		HTTPVersion: "HTTP/1.1",
		Headers:     sortedHeaders(resp.Headers),
		HeadersSize: -1,
		BodySize:    resp.Size,
		Content: HARContent{
			Size:     len(text),
			MimeType: resp.ContentType(),
			Text:     text,
		},
	}
}

// contentText renders decoded response data back to text. Strings are kept
// as they are; anything else is JSON.
func contentText(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return ""
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

func sortedHeaders(h map[string]string) []HARHeader {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]HARHeader, 0, len(keys))
	for _, k := range keys {
		out = append(out, HARHeader{Name: k, Value: h[k]})
	}
	return out
}
