package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds global application settings
type Config struct {
	DefaultGame      string `yaml:"default_game,omitempty"`
	Profile          string `yaml:"profile,omitempty"`
	LogLevel         string `yaml:"log_level"`
	Keybindings      string `yaml:"keybindings"`
	InstallerVersion string `yaml:"installer_version,omitempty"` // Reported to fommDependency checks
	DatabasePath     string `yaml:"database_path,omitempty"`     // Mod index; default <data>/fomod.db
	FactCacheSize    int    `yaml:"fact_cache_size,omitempty"`
}

func defaults() *Config {
	return &Config{
		LogLevel:    "warn",
		Keybindings: "vim",
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(configDir, "config.yaml"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if cfg == nil {
		return defaults(), nil
	}
	return cfg, nil
}

// LoadFile reads configuration from an explicit file. A missing file returns an
// error wrapping os.ErrNotExist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DatabasePath != "" {
		cfg.DatabasePath = expandPath(cfg.DatabasePath)
	}
	if cfg.FactCacheSize < 0 {
		cfg.FactCacheSize = 0
	}

	return cfg, nil
}

// Save writes configuration to config.yaml in the given directory
func (c *Config) Save(configDir string) error {
	return c.SaveFile(filepath.Join(configDir, "config.yaml"))
}

// SaveFile writes configuration to an explicit file, creating its directory
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
