// Package config provides YAML-based configuration loading for
// breakdownr.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kfarouk/breakdownr/internal/timeparse"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration, loaded from config.yaml.
type Config struct {
	StorePath string      `yaml:"store_path"`
	ExportDir string      `yaml:"export_dir"`
	Clock     ClockConfig `yaml:"clock"`
}

// ClockConfig fixes how ambiguous time values in uploads are read.
type ClockConfig struct {
	// TwoPart selects the reading of two-part colon strings like "1:30":
	// "hhmm" (the default) or "mmss". The source logs are inconsistent
	// about this, so it is a per-site setting rather than a guess.
	TwoPart string `yaml:"two_part"`
}

// Load reads a YAML config file from path. A missing file yields the
// default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Clock.TwoPart == "" {
		c.Clock.TwoPart = "hhmm"
	}
}

func (c *Config) validate() error {
	switch c.Clock.TwoPart {
	case "hhmm", "mmss":
	default:
		return fmt.Errorf("config: clock.two_part must be hhmm or mmss, got %q", c.Clock.TwoPart)
	}
	return nil
}

// Parser returns the duration parser for uploaded files: numerics are
// spreadsheet day fractions, two-part colon strings follow the configured
// convention.
func (c *Config) Parser() timeparse.Parser {
	p := timeparse.Parser{Numeric: timeparse.DayFraction}
	if c.Clock.TwoPart == "mmss" {
		p.TwoPart = timeparse.MinutesSeconds
	}
	return p
}

// DefaultPath returns ~/.config/breakdownr/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "breakdownr", "config.yaml"), nil
}
