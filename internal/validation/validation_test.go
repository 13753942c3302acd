package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"https://api.example.com/users", nil},
		{"http://localhost/dbrest/api/produk.php", nil},
		{"  ", ErrEmptyURL},
		{"", ErrEmptyURL},
		{"not a url", ErrInvalidURL},
		{"http://", ErrInvalidURL},
		{"ftp://example.com/file", ErrUnsupportedURL},
		{"mailto:someone@example.com", ErrUnsupportedURL},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if err := URL(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("URL(%q) = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	v, err := JSON("   ")
	if err != nil || v != nil {
		t.Errorf("blank JSON = %v, %v", v, err)
	}
	v, err = JSON(`{"a":1}`)
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := v.(map[string]any); !ok || m["a"] != float64(1) {
		t.Errorf("parsed = %#v", v)
	}
	if _, err := JSON(`{"a":`); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestHeaders(t *testing.T) {
	if err := Headers(map[string]string{"Accept": "application/json", "": ""}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := Headers(map[string]string{"X-Token": "  "})
	if err == nil || !strings.Contains(err.Error(), "X-Token") {
		t.Errorf("expected error naming X-Token, got %v", err)
	}
}

func validProduct() ProductForm {
	return ProductForm{
		Name:        "Diamond 86",
		Category:    "Mobile Legends: Bang Bang",
		Price:       "20000",
		Stock:       "10",
		Description: "86 diamonds",
	}
}

func TestProduct(t *testing.T) {
	if err := Product(validProduct()); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ProductForm)
		field  string
	}{
		{"empty name", func(f *ProductForm) { f.Name = " " }, "nama_produk"},
		{"numeric name", func(f *ProductForm) { f.Name = "123" }, "nama_produk"},
		{"unknown category", func(f *ProductForm) { f.Category = "Chess" }, "kategori"},
		{"text price", func(f *ProductForm) { f.Price = "cheap" }, "harga"},
		{"negative price", func(f *ProductForm) { f.Price = "-1" }, "harga"},
		{"exponent price", func(f *ProductForm) { f.Price = "1e3" }, "harga"},
		{"fractional stock", func(f *ProductForm) { f.Stock = "1.5" }, "stok"},
		{"missing stock", func(f *ProductForm) { f.Stock = "" }, "stok"},
		{"stock beyond int64", func(f *ProductForm) { f.Stock = "99999999999999999999" }, "stok"},
		{"numeric description", func(f *ProductForm) { f.Description = "42" }, "deskripsi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validProduct()
			tt.mutate(&f)
			err := Product(f)
			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fe[tt.field]; !ok || len(fe) != 1 {
				t.Errorf("errors = %v, want only %s", fe, tt.field)
			}
		})
	}
}

func TestTransaction(t *testing.T) {
	if err := Transaction(TransactionForm{ProductID: "1", Qty: "0"}); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	err := Transaction(TransactionForm{ProductID: "abc", Qty: "-2"})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fe["product_id"] == "" || fe["qty"] == "" {
		t.Errorf("errors = %v", fe)
	}

	err = Transaction(TransactionForm{ProductID: "1", Qty: "2", RequireTotal: true})
	if !errors.As(err, &fe) || fe["total_harga"] == "" {
		t.Errorf("expected total_harga error, got %v", err)
	}
}

func TestTransactionRejectsOversizedIntegers(t *testing.T) {
	if err := Transaction(TransactionForm{ProductID: "1", Qty: "9223372036854775807"}); err != nil {
		t.Fatalf("max int64 qty rejected: %v", err)
	}

	err := Transaction(TransactionForm{ProductID: "99999999999999999999", Qty: "99999999999999999999"})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if !strings.Contains(fe["qty"], "too large") || !strings.Contains(fe["product_id"], "too large") {
		t.Errorf("errors = %v", fe)
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	fe := FieldErrors{"b": "second", "a": "first"}
	if got := fe.Error(); got != "invalid input: a: first; b: second" {
		t.Errorf("Error() = %q", got)
	}
	if (FieldErrors{}).Err() != nil {
		t.Error("empty FieldErrors should be nil error")
	}
}

func TestIsBase64(t *testing.T) {
	for s, want := range map[string]bool{
		"":             true,
		"aGVsbG8=":     true,
		"aGVsbG8==":    true,
		"aGVsbG8===":   false,
		"not base64!":  false,
		"data:image/x": false,
	} {
		if got := IsBase64(s); got != want {
			t.Errorf("IsBase64(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestID(t *testing.T) {
	if ID("7") != nil {
		t.Error("expected valid id")
	}
	if ID(" ") == nil {
		t.Error("expected blank id to be rejected")
	}
}
