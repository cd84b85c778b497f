// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Switcher.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("switcher: %w", err))
	}
	if err := c.Host.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	}
	if err := c.Registry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("registry: %w", err))
	}
	if err := c.NATS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("nats: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SwitcherConfig for errors.
func (c *SwitcherConfig) Validate() error {
	switch c.Transport {
	case TransportTCP:
		if c.Address == "" {
			return errors.New("address is required for the tcp transport")
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("invalid port: %d", c.Port)
		}
	case TransportSerial:
		if c.SerialPort == "" {
			return errors.New("serial_port is required for the serial transport")
		}
		if c.Baud <= 0 {
			return fmt.Errorf("invalid baud: %d", c.Baud)
		}
	case TransportWebSocket:
		u, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("unsupported url scheme: %q (use ws:// or wss://)", u.Scheme)
		}
	default:
		return fmt.Errorf("invalid transport: %s (must be tcp, serial, or websocket)", c.Transport)
	}
	if c.DialTimeout < 0 {
		return errors.New("dial_timeout must be non-negative")
	}
	return nil
}

// Validate checks HostConfig for errors.
func (c *HostConfig) Validate() error {
	if len(bridge.ParseInputLabels(c.Inputs)) < 2 {
		return errors.New("inputs needs an off label and at least one input")
	}
	if c.Heartbeat <= 0 {
		return errors.New("heartbeat must be positive")
	}
	return nil
}

// Validate checks RegistryConfig for errors.
func (c *RegistryConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Path == "" {
			return errors.New("path is required for the file backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis backend")
		}
		if c.RedisDB < 0 {
			return errors.New("redis_db must be non-negative")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be memory, file, or redis)", c.Backend)
	}
	return nil
}

// Validate checks NATSConfig for errors.
func (c *NATSConfig) Validate() error {
	if c.URL != "" && c.Subject == "" {
		return errors.New("subject is required when url is set")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
