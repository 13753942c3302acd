package api

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		body  string
		shape Shape
		rows  int
	}{
		{`[{"id":1},{"id":2}]`, ShapeBare, 2},
		{`{"response":200,"data":[{"id":1}]}`, ShapeData, 1},
		{`{"result":[{"id":1},{"id":2},{"id":3}]}`, ShapeResult, 3},
		{`{"products":[]}`, ShapeProducts, 0},
		{`{"data":{"id":1}}`, ShapeUnknown, 0},
		{`"nope"`, ShapeUnknown, 0},
		{`null`, ShapeUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			env, err := DecodeList(decode(t, tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if env.Shape != tt.shape || len(env.Rows) != tt.rows {
				t.Errorf("got %s/%d rows, want %s/%d", env.Shape, len(env.Rows), tt.shape, tt.rows)
			}
		})
	}
}

func TestDecodeRow(t *testing.T) {
	tests := []struct {
		body  string
		shape Shape
		want  string
	}{
		{`[{"id":1},{"id":2}]`, ShapeBare, `{"id":1}`},
		{`[]`, ShapeBare, ``},
		{`{"response":200,"data":{"id":3}}`, ShapeData, `{"id":3}`},
		{`{"data":[{"id":4}]}`, ShapeData, `{"id":4}`},
		{`{"result":{"id":5}}`, ShapeResult, `{"id":5}`},
		{`{"id":6}`, ShapeBare, `{"id":6}`},
		{`42`, ShapeUnknown, ``},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			raw, shape, err := DecodeRow(decode(t, tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if shape != tt.shape || string(raw) != tt.want {
				t.Errorf("got %s %s, want %s %s", shape, raw, tt.shape, tt.want)
			}
		})
	}
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var row struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":12,"b":" 34 ","c":null}`), &row); err != nil {
		t.Fatal(err)
	}
	if row.A != "12" || row.B != "34" || row.C != "" {
		t.Errorf("row = %+v", row)
	}

	out, _ := json.Marshal(struct {
		N ID `json:"n"`
		S ID `json:"s"`
	}{"7", "abc"})
	if string(out) != `{"n":7,"s":"abc"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestNumberIsLenient(t *testing.T) {
	var row struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"a":1.5,"b":"20000","c":"n/a","d":null,"e":true}`), &row); err != nil {
		t.Fatal(err)
	}
	if row.A != 1.5 || row.B != 20000 || row.C != 0 || row.D != 0 || row.E != 0 {
		t.Errorf("row = %+v", row)
	}
	if Number(9.9).Int() != 9 {
		t.Error("Int should truncate")
	}
}

func TestResponseCodeAndMessage(t *testing.T) {
	if got := responseCode(decode(t, `{"response":"500"}`)); got != 500 {
		t.Errorf("string code = %d", got)
	}
	if got := responseCode(decode(t, `[1]`)); got != 0 {
		t.Errorf("array code = %d", got)
	}
	if got := backendMessage(decode(t, `{"message":"","error":"boom"}`)); got != "boom" {
		t.Errorf("message = %q", got)
	}
}
