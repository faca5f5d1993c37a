// Package config loads the proofmark configuration file and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".proofmark.yaml"

// Config holds all proofmark configuration.
type Config struct {
	// Share links
	Share ShareConfig `yaml:"share"`

	// Inline marker parsing
	Parser ParserConfig `yaml:"parser"`

	// Terminal rendering
	Render RenderConfig `yaml:"render"`

	// Batch decoding
	Batch BatchConfig `yaml:"batch"`

	// File watching
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ShareConfig configures share link generation and decoding.
type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
	Param   string `yaml:"param"` // query parameter carrying the payload
}

// ParserConfig configures the inline marker parser.
type ParserConfig struct {
	Separator string `yaml:"separator"` // between original and corrected text
}

// RenderConfig configures terminal output.
type RenderConfig struct {
	Theme      string `yaml:"theme"` // light, dark, auto
	Width      int    `yaml:"width"`
	ShowLegend bool   `yaml:"show_legend"`
}

// BatchConfig configures concurrent decoding of payload lists.
type BatchConfig struct {
	Workers int    `yaml:"workers"`
	Timeout string `yaml:"timeout"`
}

// WatchConfig configures the payload file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Share: ShareConfig{
			BaseURL: "https://proofmark.app/",
			Param:   "data",
		},
		Parser: ParserConfig{
			Separator: "⋮",
		},
		Render: RenderConfig{
			Theme:      "auto",
			Width:      80,
			ShowLegend: true,
		},
		Batch: BatchConfig{
			Workers: 4,
			Timeout: "30s",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PROOFMARK_BASE_URL"); v != "" {
		c.Share.BaseURL = v
	}
	if v := os.Getenv("PROOFMARK_PARAM"); v != "" {
		c.Share.Param = v
	}
	if v := os.Getenv("PROOFMARK_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PROOFMARK_THEME"); v != "" {
		c.Render.Theme = strings.ToLower(v)
	}
	// Unparseable worker counts are ignored.
	if v := os.Getenv("PROOFMARK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Batch.Workers = n
		}
	}
}

// GetBatchTimeout returns the per-run batch timeout as a duration.
func (c *Config) GetBatchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Batch.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce interval as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// ValidThemes lists the accepted render themes.
var ValidThemes = []string{"light", "dark", "auto"}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Parser.Separator == "" {
		return fmt.Errorf("parser separator must not be empty")
	}
	if strings.ContainsAny(c.Parser.Separator, "|{}") {
		return fmt.Errorf("parser separator %q must not contain '|', '{' or '}'", c.Parser.Separator)
	}
	if c.Share.Param == "" {
		return fmt.Errorf("share param must not be empty")
	}
	if !slices.Contains(ValidThemes, c.Render.Theme) {
		return fmt.Errorf("invalid render theme: %s (valid: %v)", c.Render.Theme, ValidThemes)
	}
	if c.Render.Width < 0 {
		return fmt.Errorf("render width must not be negative: %d", c.Render.Width)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive: %d", c.Batch.Workers)
	}
	if c.Logging.Level != "" && !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
