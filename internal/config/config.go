// Package config loads cookiedesk settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// Database is the SQLite cookie store path.
	Database string `yaml:"database"`
	// URL is the page whose cookies are managed when --url is not given.
	URL     string        `yaml:"url"`
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DisplayConfig configures presentation.
type DisplayConfig struct {
	// Truncate is the number of value characters shown in listings.
	Truncate int `yaml:"truncate"`
}

// DefaultDir is the directory holding the config file and database.
const DefaultDir = "~/.cookiedesk"

// Default returns the default configuration.
func Default() Config {
	return Config{
		Database: DefaultDir + "/cookies.db",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Display: DisplayConfig{
			Truncate: 50,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return DefaultDir + "/config.yaml"
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	expanded, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}

	data, err := afero.ReadFile(fs, expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", expanded, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(fs afero.Fs, path string, cfg Config) error {
	expanded, err := ExpandHome(path)
	if err != nil {
		return err
	}

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, expanded, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database must not be empty")
	}
	if c.Display.Truncate < 0 {
		return fmt.Errorf("display.truncate must be >= 0, got %d", c.Display.Truncate)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
