package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape names the wrapper a backend response arrived in.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBare          // [..] or {..} at the top level
	ShapeData          // {"data": ..}
	ShapeResult        // {"result": ..}
	ShapeProducts      // {"products": ..}
)

func (s Shape) String() string {
	switch s {
	case ShapeBare:
		return "bare"
	case ShapeData:
		return "data"
	case ShapeResult:
		return "result"
	case ShapeProducts:
		return "products"
	}
	return "unknown"
}

// listKeys are the wrapper keys checked for lists, in order.
var listKeys = []struct {
	key   string
	shape Shape
}{
	{"data", ShapeData},
	{"result", ShapeResult},
	{"products", ShapeProducts},
}

// Envelope is a decoded list response: the rows plus the wrapper they were
// found in.
type Envelope struct {
	Shape Shape
	Rows  []json.RawMessage
}

// DecodeList finds the row array in a decoded response body. A body that
// matches none of the accepted shapes yields ShapeUnknown and no rows.
func DecodeList(data any) (Envelope, error) {
	switch v := data.(type) {
	case []any:
		rows, err := rawRows(v)
		return Envelope{Shape: ShapeBare, Rows: rows}, err
	case map[string]any:
		for _, lk := range listKeys {
			if arr, ok := v[lk.key].([]any); ok {
				rows, err := rawRows(arr)
				return Envelope{Shape: lk.shape, Rows: rows}, err
			}
		}
	}
	return Envelope{Shape: ShapeUnknown}, nil
}

// DecodeRow finds a single row: the first element of a bare array, the
// object under "data" or "result", or the body object itself.
func DecodeRow(data any) (json.RawMessage, Shape, error) {
	switch v := data.(type) {
	case []any:
		if len(v) == 0 {
			return nil, ShapeBare, nil
		}
		raw, err := json.Marshal(v[0])
		return raw, ShapeBare, err
	case map[string]any:
		for _, lk := range listKeys[:2] {
			switch inner := v[lk.key].(type) {
			case map[string]any:
				raw, err := json.Marshal(inner)
				return raw, lk.shape, err
			case []any:
				if len(inner) == 0 {
					return nil, lk.shape, nil
				}
				raw, err := json.Marshal(inner[0])
				return raw, lk.shape, err
			}
		}
		raw, err := json.Marshal(v)
		return raw, ShapeBare, err
	}
	return nil, ShapeUnknown, nil
}

func rawRows(items []any) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

func decodeRows[T any](rows []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, raw := range rows {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ID is a row identifier that the backend sends either as a number or as a
// string. It is kept in its textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id ID) String() string { return string(id) }

// Number is a numeric field the backend may send as a number, a numeric
// string, or null. Anything unreadable decodes as 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	switch {
	case bytes.Equal(b, []byte("null")):
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
	default:
		if err := json.Unmarshal(b, &f); err != nil {
			f = 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	*n = Number(f)
	return nil
}

// Int returns n truncated to an integer.
func (n Number) Int() int64 { return int64(n) }

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// responseCode reads the "response" field backends use to report their own
// status inside a 200 reply.
func responseCode(data any) int {
	obj, ok := data.(map[string]any)
	if !ok {
		return 0
	}
	switch v := obj["response"].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// backendMessage returns "message", falling back to "error".
func backendMessage(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
