package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvConfig         = "RESTCLIENT_CONFIG"
	EnvProductURL     = "RESTCLIENT_PRODUCT_URL"
	EnvTransactionURL = "RESTCLIENT_TRANSACTION_URL"
)

// Dir returns ~/.config/restclient, or "" when the home directory is
// unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "restclient")
}

// Path returns the config file location: $RESTCLIENT_CONFIG, else
// config.yaml under Dir.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ThemesDir returns the directory searched for custom theme files.
func ThemesDir() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "themes")
}

// Load reads the config file at Path over the defaults and applies
// environment overrides. A missing file is not an error. When the file
// cannot be parsed the defaults are returned with the error.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	var loadErr error
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			loadErr = fmt.Errorf("reading config: %w", err)
		default:
			parsed := DefaultConfig()
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				loadErr = fmt.Errorf("parsing config %s: %w", path, err)
			} else {
				cfg = parsed
			}
		}
	}

	applyEnv(&cfg)
	return cfg, loadErr
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvProductURL); v != "" {
		cfg.ProductURL = v
	}
	if v := os.Getenv(EnvTransactionURL); v != "" {
		cfg.TransactionURL = v
	}
}

// HistoryPath returns the file the history backend writes to. It is empty
// for the memory backend.
func (c Config) HistoryPath() string {
	if c.History.Backend == BackendMemory {
		return ""
	}
	if c.History.Path != "" {
		return c.History.Path
	}
	dir := Dir()
	if dir == "" {
		dir = "."
	}
	if c.History.Backend == BackendJSON {
		return filepath.Join(dir, "history.json")
	}
	return filepath.Join(dir, "history.db")
}
