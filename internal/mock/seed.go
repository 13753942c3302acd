package mock

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Product is a row of the mock products table.
type Product struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"nama_produk" yaml:"nama_produk"`
	Category    string  `json:"kategori" yaml:"kategori"`
	Price       float64 `json:"harga" yaml:"harga"`
	Stock       int64   `json:"stok" yaml:"stok"`
	Description string  `json:"deskripsi" yaml:"deskripsi"`
	Image       *string `json:"gambar" yaml:"gambar,omitempty"`
}

// Transaction is a row of the mock transactions table.
type Transaction struct {
	ID         int64   `json:"id" yaml:"id"`
	ProductID  int64   `json:"product_id" yaml:"product_id"`
	Qty        int64   `json:"qty" yaml:"qty"`
	TotalPrice float64 `json:"total_harga" yaml:"total_harga"`
	Date       string  `json:"tanggal" yaml:"tanggal"`
}

// Seed is the initial content of the mock tables.
type Seed struct {
	Products     []Product     `yaml:"products"`
	Transactions []Transaction `yaml:"transactions"`
}

// DefaultSeed returns a small catalogue to start from.
func DefaultSeed() Seed {
	return Seed{
		Products: []Product{
			{ID: 1, Name: "Diamond 86", Category: "Mobile Legends: Bang Bang", Price: 20000, Stock: 100, Description: "86 diamonds top-up"},
			{ID: 2, Name: "Genesis Crystal 300", Category: "Genshin Impact", Price: 79000, Stock: 40, Description: "300 + 30 Genesis Crystals"},
			{ID: 3, Name: "Robux 400", Category: "Roblox", Price: 65000, Stock: 25, Description: "400 Robux gift card"},
		},
		Transactions: []Transaction{
			{ID: 1, ProductID: 1, Qty: 2, TotalPrice: 40000, Date: "2024-01-15 10:30:00"},
		},
	}
}

// LoadSeed reads a seed from a YAML file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	return s, nil
}
