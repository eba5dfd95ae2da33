package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"medstock/pkg/client"
)

const (
	// DefaultConfigFileName is the dashboard configuration file name.
	DefaultConfigFileName = "dashboard.toml"

	configSubdir = "medstock"
)

// Config holds dashboard settings.
type Config struct {
	APIURL    string   `toml:"api_url"`
	TokenFile string   `toml:"token_file"`
	Timeout   Duration `toml:"timeout"`
	LowStock  int64    `toml:"low_stock_threshold"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		APIURL:    client.DefaultBaseURL,
		TokenFile: defaultTokenFile(),
		Timeout:   Duration{client.DefaultTimeout},
		LowStock:  10,
	}
}

// LoadConfig reads path, or the user config file when path is empty.
// A missing default file is not an error. MEDSTOCK_API_URL and
// MEDSTOCK_TOKEN_FILE override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if v := os.Getenv("MEDSTOCK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("MEDSTOCK_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for obvious mistakes.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.Timeout.Duration <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.LowStock < 0 {
		return errors.New("low_stock_threshold must not be negative")
	}
	return nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configSubdir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", configSubdir)
}

func defaultConfigPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, DefaultConfigFileName)
}

func defaultTokenFile() string {
	dir := configDir()
	if dir == "" {
		return filepath.Join(".", ".medstock-token")
	}
	return filepath.Join(dir, "token.json")
}
