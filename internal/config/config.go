package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"logsplit/internal/compress"
)

//go:embed default.toml
var defaultConfig string

// Config is the complete run configuration
type Config struct {
	Input       string            `toml:"input"`
	Output      string            `toml:"output"`
	Compression CompressionConfig `toml:"compression"`
	Limits      LimitsConfig      `toml:"limits"`
	Log         LogConfig         `toml:"log"`
}

type CompressionConfig struct {
	Enabled bool   `toml:"enabled"`
	Codec   string `toml:"codec"`
}

type LimitsConfig struct {
	MaxLineBytes int `toml:"max_line_bytes"`
}

// LogConfig controls the program's own logging, not the logs being split
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Default returns the embedded default configuration
func Default() (*Config, error) {
	var cfg Config

	_, err := toml.Decode(defaultConfig, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	return &cfg, nil
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Validate checks the configuration before a run
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input directory is required")
	}

	if c.Output == "" {
		return errors.New("output directory cannot be empty")
	}

	_, err := compress.ParseCodec(c.Compression.Codec)
	if err != nil {
		return err
	}

	if c.Limits.MaxLineBytes <= 0 {
		return fmt.Errorf("max_line_bytes must be positive, got %d", c.Limits.MaxLineBytes)
	}

	return c.Log.Validate()
}

// Validate checks the logging section
func (c LogConfig) Validate() error {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Format)
	}

	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return errors.New("log rotation limits must not be negative")
	}

	return nil
}
