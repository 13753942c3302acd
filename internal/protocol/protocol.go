package protocol

import (
	"context"
	"fmt"
	"strings"
)

// Method is an HTTP method supported by the client.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported method in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod converts s to a Method, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// SendsBody reports whether a request with this method carries its body.
// GET and DELETE never do, even when one was supplied.
func (m Method) SendsBody() bool {
	return m != MethodGet && m != MethodDelete
}

// Executor performs a single request. Implementations never fail: transport
// problems are reported through a Response with Status 0.
type Executor interface {
	Execute(ctx context.Context, req Request) Response
}

// Request describes one HTTP call.
type Request struct {
	URL     string            `json:"url"`
	Method  Method            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
}

// Clone returns a copy that shares no maps with r.
func (r Request) Clone() Request {
	c := r
	if r.Headers != nil {
		c.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			c.Headers[k] = v
		}
	}
	return c
}

// StatusTransportFailure is the status of a Response for which no HTTP
// response was received.
const StatusTransportFailure = 0

// Response is the normalized outcome of a request.
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Data       any               `json:"data"`
	Time       int64             `json:"time"`
	Size       int               `json:"size"`
}

// Clone returns a copy that shares no maps or slices with r, including
// those nested in Data.
func (r Response) Clone() Response {
	c := r
	if r.Headers != nil {
		c.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			c.Headers[k] = v
		}
	}
	c.Data = cloneValue(r.Data)
	return c
}

// cloneValue copies the containers a decoded JSON value can hold.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// Failed reports whether the request never produced an HTTP response.
func (r Response) Failed() bool {
	return r.Status == StatusTransportFailure
}

// ErrorMessage returns data.error for failed responses, or "".
func (r Response) ErrorMessage() string {
	obj, ok := r.Data.(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := obj["error"].(string)
	return msg
}

// ContentType returns the content-type response header.
func (r Response) ContentType() string {
	return r.Headers["content-type"]
}

// TransportFailure builds the sentinel response for err.
func TransportFailure(err error, elapsedMs int64) Response {
	msg := "Unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	return Response{
		Status:     StatusTransportFailure,
		StatusText: "Error",
		Headers:    map[string]string{},
		Data:       map[string]any{"error": msg},
		Time:       elapsedMs,
		Size:       0,
	}
}
