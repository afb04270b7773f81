package config

// loader.go - configuration loading from the YAML file and environment.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (VIDERE_*)
//   3. Config file  (--config / VIDERE_CONFIG)
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "VIDERE_"

// ConfigPathEnv names the config file when --config is absent.
const ConfigPathEnv = EnvPrefix + "CONFIG"

// Load builds a Config from defaults, the optional YAML file at path,
// and VIDERE_* environment variables.  A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays VIDERE_* variables onto cfg.  Unset variables
// leave the existing value alone.
func LoadFromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
