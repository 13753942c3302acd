package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/sadopc/restclient/internal/protocol"
	"github.com/sadopc/restclient/internal/validation"
)

// ErrNotFound is returned when a single-row lookup yields no row.
var ErrNotFound = errors.New("not found")

// Product is a row of the products resource. Some deployments use "nama"
// and "id_produk" instead of "nama_produk" and "id".
type Product struct {
	ID          ID     `json:"id"`
	AltID       ID     `json:"id_produk,omitempty"`
	Name        string `json:"nama_produk"`
	AltName     string `json:"nama,omitempty"`
	Category    string `json:"kategori"`
	Price       Number `json:"harga"`
	Stock       Number `json:"stok"`
	Description string `json:"deskripsi"`
	Image       string `json:"gambar,omitempty"`
}

// Key returns the row id.
func (p Product) Key() ID {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

// DisplayName returns the product name.
func (p Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.AltName
}

// ProductInput is product data as entered by the user.
type ProductInput struct {
	Name        string
	Category    string
	Price       string
	Stock       string
	Description string
	Image       []byte
}

func (in ProductInput) form() validation.ProductForm {
	return validation.ProductForm{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
	}
}

type productPayload struct {
	Name        string  `json:"nama_produk"`
	Category    string  `json:"kategori"`
	Price       float64 `json:"harga"`
	Stock       int64   `json:"stok"`
	Description string  `json:"deskripsi"`
	Image       *string `json:"gambar,omitempty"`
}

// payload assumes in has been validated.
func (in ProductInput) payload() productPayload {
	price, _ := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	stock, _ := strconv.ParseInt(strings.TrimSpace(in.Stock), 10, 64)
	p := productPayload{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Price:       price,
		Stock:       stock,
		Description: strings.TrimSpace(in.Description),
	}
	if len(in.Image) > 0 {
		enc := base64.StdEncoding.EncodeToString(in.Image)
		p.Image = &enc
	}
	return p
}

// storedImage extracts the base64 part of a stored image, dropping any
// data-URL prefix. It reports false when the result is not valid base64.
func storedImage(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	if !validation.IsBase64(s) {
		return "", false
	}
	return s, true
}

// Products is the products resource.
type Products struct {
	c *Client
}

// List returns every product. An unrecognised body shape yields no rows.
func (p *Products) List(ctx context.Context) ([]Product, error) {
	_, resp := p.c.send(ctx, protocol.MethodGet, p.c.productURL, nil)
	if err := check("list products", resp, "failed to load products", 200); err != nil {
		return nil, err
	}
	env, err := DecodeList(resp.Data)
	if err != nil {
		return nil, &Error{Op: "list products", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if env.Shape == ShapeUnknown {
		p.c.log.Debug("unrecognised product list shape")
		return nil, nil
	}
	rows, err := decodeRows[Product](env.Rows)
	if err != nil {
		return nil, &Error{Op: "list products", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	return rows, nil
}

// Get returns the product with id.
func (p *Products) Get(ctx context.Context, id ID) (Product, error) {
	if err := validation.ID(id.String()); err != nil {
		return Product{}, err
	}
	_, resp := p.c.send(ctx, protocol.MethodGet, withID(p.c.productURL, id), nil)
	if err := check("get product", resp, "failed to load product", 200); err != nil {
		return Product{}, err
	}
	raw, _, err := DecodeRow(resp.Data)
	if err != nil {
		return Product{}, &Error{Op: "get product", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if raw == nil {
		return Product{}, ErrNotFound
	}
	rows, err := decodeRows[Product]([]json.RawMessage{raw})
	if err != nil {
		return Product{}, &Error{Op: "get product", Status: resp.Status, Message: err.Error(), Response: resp}
	}
	if rows[0].Key() == "" && rows[0].DisplayName() == "" {
		return Product{}, ErrNotFound
	}
	return rows[0], nil
}

// Create validates in and adds it as a new product.
func (p *Products) Create(ctx context.Context, in ProductInput) (protocol.Response, error) {
	if err := validation.Product(in.form()); err != nil {
		return protocol.Response{}, err
	}
	if p.nameTaken(ctx, in.Name, "") {
		return protocol.Response{}, duplicateName()
	}
	_, resp := p.c.send(ctx, protocol.MethodPost, p.c.productURL, in.payload())
	return resp, check("create product", resp, "failed to create product", 200, 201)
}

// Update validates in and replaces the product with id. Without a new image
// the stored one is sent back so the backend keeps it.
func (p *Products) Update(ctx context.Context, id ID, in ProductInput) (protocol.Response, error) {
	if err := validation.ID(id.String()); err != nil {
		return protocol.Response{}, err
	}
	if err := validation.Product(in.form()); err != nil {
		return protocol.Response{}, err
	}
	if p.nameTaken(ctx, in.Name, id) {
		return protocol.Response{}, duplicateName()
	}

	body := in.payload()
	if body.Image == nil {
		current, err := p.Get(ctx, id)
		switch {
		case err != nil:
			p.c.log.Warn("could not load current product image", "id", id, "error", err)
		default:
			if img, ok := storedImage(current.Image); ok {
				body.Image = &img
			} else if current.Image != "" {
				p.c.log.Warn("stored image is not valid base64, dropping it", "id", id)
			}
		}
	}

	_, resp := p.c.send(ctx, protocol.MethodPut, withID(p.c.productURL, id), body)
	return resp, check("update product", resp, "failed to update product", 200)
}

// Delete removes the product with id.
func (p *Products) Delete(ctx context.Context, id ID) (protocol.Response, error) {
	if err := validation.ID(id.String()); err != nil {
		return protocol.Response{}, err
	}
	_, resp := p.c.send(ctx, protocol.MethodDelete, withID(p.c.productURL, id), nil)
	return resp, check("delete product", resp, "failed to delete product", 200)
}

// setStock rewrites a product with a new stock level, keeping its other
// fields.
func (p *Products) setStock(ctx context.Context, prod Product, stock int64) (protocol.Response, error) {
	body := productPayload{
		Name:        prod.DisplayName(),
		Category:    prod.Category,
		Price:       prod.Price.Float(),
		Stock:       stock,
		Description: prod.Description,
	}
	if prod.Image != "" {
		img := prod.Image
		body.Image = &img
	}
	_, resp := p.c.send(ctx, protocol.MethodPut, withID(p.c.productURL, prod.Key()), body)
	return resp, check("update stock", resp, "failed to update stock", 200)
}

// find looks id up in the full product list.
func (p *Products) find(ctx context.Context, id ID) (Product, error) {
	rows, err := p.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, r := range rows {
		if r.Key() == id {
			return r, nil
		}
	}
	return Product{}, ErrNotFound
}

// nameTaken reports whether another product already uses name, ignoring
// case and surrounding space. If the list cannot be loaded the check passes.
func (p *Products) nameTaken(ctx context.Context, name string, exclude ID) bool {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return false
	}
	rows, err := p.List(ctx)
	if err != nil {
		p.c.log.Warn("could not verify product name is unique", "error", err)
		return false
	}
	exclude = ID(strings.TrimSpace(exclude.String()))
	for _, r := range rows {
		if exclude != "" && r.Key() == exclude {
			continue
		}
		if strings.ToLower(strings.TrimSpace(r.DisplayName())) == want {
			return true
		}
	}
	return false
}

func duplicateName() error {
	return validation.FieldErrors{"nama_produk": "product name already exists, use a different name"}
}
