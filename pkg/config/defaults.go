// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Switcher: SwitcherConfig{
			Transport:   TransportTCP,
			Port:        sis.DefaultPort,
			Baud:        9600,
			LineEnding:  "\r\n",
			DialTimeout: 5,
		},
		Host: HostConfig{
			Inputs:    bridge.DefaultInputLabels,
			Heartbeat: 10,
		},
		Registry: RegistryConfig{
			Backend:   BackendMemory,
			KeyPrefix: "sspctl",
		},
		NATS: NATSConfig{
			Subject: "sspctl",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Switcher
	if c.Switcher.Transport == "" {
		c.Switcher.Transport = d.Switcher.Transport
	}
	if c.Switcher.Port == 0 {
		c.Switcher.Port = d.Switcher.Port
	}
	if c.Switcher.Baud == 0 {
		c.Switcher.Baud = d.Switcher.Baud
	}
	if c.Switcher.LineEnding == "" {
		c.Switcher.LineEnding = d.Switcher.LineEnding
	}
	if c.Switcher.DialTimeout == 0 {
		c.Switcher.DialTimeout = d.Switcher.DialTimeout
	}

	// Host
	if c.Host.Inputs == "" {
		c.Host.Inputs = d.Host.Inputs
	}
	if c.Host.Heartbeat == 0 {
		c.Host.Heartbeat = d.Host.Heartbeat
	}

	// Registry
	if c.Registry.Backend == "" {
		c.Registry.Backend = d.Registry.Backend
	}
	if c.Registry.KeyPrefix == "" {
		c.Registry.KeyPrefix = d.Registry.KeyPrefix
	}

	// NATS
	if c.NATS.Subject == "" {
		c.NATS.Subject = d.NATS.Subject
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
