package config

import (
	"fmt"
	"time"
)

// History backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default endpoints of the products/transactions API.
const (
	DefaultProductURL     = "http://localhost/dbrest/api/produk.php"
	DefaultTransactionURL = "http://localhost/dbrest/api/transaksi.php"
)

// Config holds the application configuration.
type Config struct {
	Theme          string        `yaml:"theme"`
	Timeout        time.Duration `yaml:"timeout"`
	ProductURL     string        `yaml:"product_url"`
	TransactionURL string        `yaml:"transaction_url"`
	History        HistoryConfig `yaml:"history"`
	Proxy          string        `yaml:"proxy"`
	NoProxy        string        `yaml:"no_proxy"`
	TLS            TLSConfig     `yaml:"tls"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	Color          string        `yaml:"color"`
}

// HistoryConfig selects where the history ledger is persisted. An empty
// Path means the default file under the config directory.
type HistoryConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// TLSConfig holds certificate settings for outgoing requests.
type TLSConfig struct {
	CAFile             string `yaml:"ca_file"`
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:          "dark",
		Timeout:        0,
		ProductURL:     DefaultProductURL,
		TransactionURL: DefaultTransactionURL,
		History:        HistoryConfig{Backend: BackendSQLite},
		LogLevel:       "warn",
		LogFormat:      "text",
		Color:          ColorAuto,
	}
}

// Validate reports settings no component can act on.
func (c Config) Validate() error {
	switch c.History.Backend {
	case BackendSQLite, BackendJSON, BackendMemory:
	default:
		return fmt.Errorf("history.backend: unknown backend %q (want sqlite, json or memory)", c.History.Backend)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color: unknown mode %q (want auto, always or never)", c.Color)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls: cert_file and key_file must be set together")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout: must not be negative, got %s", c.Timeout)
	}
	return nil
}
