// Package validation checks user input before it is turned into requests.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FieldErrors maps a field name to the reason it was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns fe as an error, or nil when it is empty.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Categories are the accepted product categories.
var Categories = []string{
	"Mobile Legends: Bang Bang",
	"Free Fire",
	"PUBG Mobile",
	"Genshin Impact",
	"Roblox",
	"Block Blast!",
	"Stumble Guys",
	"Honkai: Star Rail",
	"Call of Duty Mobile",
	"Free Fire MAX",
	"Higgs Domino Island",
	"Clash of Clans",
	"Lainnya",
}

var (
	ErrEmptyURL       = errors.New("URL must not be empty")
	ErrInvalidURL     = errors.New("invalid URL format")
	ErrUnsupportedURL = errors.New("URL must use HTTP or HTTPS")
)

// URL checks that raw is a non-empty absolute http or https URL.
func URL(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return ErrUnsupportedURL
}

// JSON parses s. A blank string is valid and yields nil.
func JSON(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// Headers rejects a named header with a blank value. Headers with a blank
// name are ignored.
func Headers(h map[string]string) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(h[k]) == "" {
			return fmt.Errorf("header %q must not be empty", k)
		}
	}
	return nil
}

var (
	decimalRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	integerRe = regexp.MustCompile(`^\d+$`)
	base64Re  = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

// IsBase64 reports whether s contains only base64 alphabet characters with
// at most two trailing '=' pads.
func IsBase64(s string) bool {
	return base64Re.MatchString(s)
}

// IsNumeric reports whether s, trimmed, reads as a number.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f)
}

// ProductForm is product input as typed by the user.
type ProductForm struct {
	Name        string
	Category    string
	Price       string
	Stock       string
	Description string
}

// Product validates a product form.
func Product(f ProductForm) error {
	errs := FieldErrors{}

	textField(errs, "nama_produk", "product name", f.Name)

	switch cat := strings.TrimSpace(f.Category); {
	case cat == "":
		errs["kategori"] = "category is required"
	case !isCategory(cat):
		errs["kategori"] = "category must be one of the listed options"
	}

	if msg := checkNumber("price", f.Price, decimalRe, "invalid price format"); msg != "" {
		errs["harga"] = msg
	}
	if msg := checkNumber("stock", f.Stock, integerRe, "stock must be a whole number"); msg != "" {
		errs["stok"] = msg
	}

	textField(errs, "deskripsi", "description", f.Description)
	return errs.Err()
}

// TransactionForm is transaction input as typed by the user. TotalPrice is
// only checked when RequireTotal is set.
type TransactionForm struct {
	ProductID    string
	Qty          string
	TotalPrice   string
	RequireTotal bool
}

// Transaction validates a transaction form.
func Transaction(f TransactionForm) error {
	errs := FieldErrors{}
	if msg := checkNumber("product id", f.ProductID, integerRe, "product id must be a whole number"); msg != "" {
		errs["product_id"] = msg
	}
	if msg := checkNumber("quantity", f.Qty, integerRe, "quantity must be a whole number"); msg != "" {
		errs["qty"] = msg
	}
	if f.RequireTotal {
		if msg := checkNumber("total price", f.TotalPrice, decimalRe, "invalid total price format"); msg != "" {
			errs["total_harga"] = msg
		}
	}
	return errs.Err()
}

// ID checks that an id needed to address a row was supplied.
func ID(id string) error {
	if strings.TrimSpace(id) == "" {
		return FieldErrors{"id": "id is required"}
	}
	return nil
}

func textField(errs FieldErrors, key, label, value string) {
	switch v := strings.TrimSpace(value); {
	case v == "":
		errs[key] = label + " is required"
	case IsNumeric(v):
		errs[key] = label + " must be text, not a number"
	}
}

func checkNumber(label, value string, format *regexp.Regexp, formatMsg string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return label + " is required"
	}
	if !IsNumeric(v) {
		return label + " must be a number"
	}
	if f, _ := strconv.ParseFloat(v, 64); f < 0 {
		return label + " must not be negative"
	}
	if !format.MatchString(v) {
		return formatMsg
	}
	if format == integerRe {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return label + " is too large"
		}
	}
	return ""
}

func isCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
