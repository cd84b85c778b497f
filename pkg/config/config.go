// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the sspctl TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard locations with environment
// overrides. A missing file yields the defaults.
// Search order: $XDG_CONFIG_HOME/sspctl/config.toml, ~/.config/sspctl/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "sspctl", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sspctl", "config.toml"))
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Switcher
	if v := os.Getenv("SSPCTL_SWITCHER_TRANSPORT"); v != "" {
		cfg.Switcher.Transport = v
	}
	if v := os.Getenv("SSPCTL_SWITCHER_ADDRESS"); v != "" {
		cfg.Switcher.Address = v
	}
	if v := os.Getenv("SSPCTL_SWITCHER_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Switcher.Port = i
		}
	}
	if v := os.Getenv("SSPCTL_SWITCHER_SERIAL_PORT"); v != "" {
		cfg.Switcher.SerialPort = v
	}
	if v := os.Getenv("SSPCTL_SWITCHER_BAUD"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Switcher.Baud = i
		}
	}
	if v := os.Getenv("SSPCTL_SWITCHER_URL"); v != "" {
		cfg.Switcher.URL = v
	}

	// Host
	if v := os.Getenv("SSPCTL_HOST_INPUTS"); v != "" {
		cfg.Host.Inputs = v
	}
	if v := os.Getenv("SSPCTL_HOST_HEARTBEAT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Host.Heartbeat = i
		}
	}

	// Registry
	if v := os.Getenv("SSPCTL_REGISTRY_BACKEND"); v != "" {
		cfg.Registry.Backend = v
	}
	if v := os.Getenv("SSPCTL_REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}
	if v := os.Getenv("SSPCTL_REGISTRY_REDIS_ADDR"); v != "" {
		cfg.Registry.RedisAddr = v
	}

	// NATS
	if v := os.Getenv("SSPCTL_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}

	// HTTP
	if v := os.Getenv("SSPCTL_HTTP_LISTEN"); v != "" {
		cfg.HTTP.Listen = v
	}

	// Log
	if v := os.Getenv("SSPCTL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
