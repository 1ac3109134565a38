// Package config provides configuration loading for the canopy executables.
// Supports YAML files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the interactive CLI and the daemon.
type Config struct {
	Overlay OverlayConfig `yaml:"overlay"`
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
}

// OverlayConfig configures the engine itself.
type OverlayConfig struct {
	// Salt seeds the key-to-point hash. Changing it relocates every key,
	// so it is fixed for the lifetime of an overlay.
	Salt string `yaml:"salt"`
	// Seed initializes the RNG that draws join points. Zero means seed
	// from the clock.
	Seed int64 `yaml:"seed"`
}

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// RenderConfig sets the text-grid dimensions for map output.
type RenderConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// Default returns a Config with the simulator's standard settings.
func Default() *Config {
	return &Config{
		Overlay: OverlayConfig{
			Salt: "can-demo-salt",
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Render: RenderConfig{
			Cols: 40,
			Rows: 20,
		},
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides on top. An empty path loads defaults plus
// environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from CANOPY_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CANOPY_SALT"); v != "" {
		c.Overlay.Salt = v
	}
	if v := os.Getenv("CANOPY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Overlay.Seed = n
		}
	}
	if v := os.Getenv("CANOPY_LISTEN"); v != "" {
		c.Server.ListenAddr = v
	}
}

func (c *Config) validate() error {
	if c.Overlay.Salt == "" {
		return fmt.Errorf("overlay.salt must not be empty")
	}
	if c.Render.Cols <= 0 || c.Render.Rows <= 0 {
		return fmt.Errorf("render grid must be positive, got %dx%d", c.Render.Cols, c.Render.Rows)
	}
	return nil
}
