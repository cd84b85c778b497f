// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Switcher SwitcherConfig `toml:"switcher"`
	Host     HostConfig     `toml:"host"`
	Registry RegistryConfig `toml:"registry"`
	NATS     NATSConfig     `toml:"nats"`
	HTTP     HTTPConfig     `toml:"http"`
	Log      LogConfig      `toml:"log"`
}

// Switcher transports
const (
	TransportTCP       = "tcp"
	TransportSerial    = "serial"
	TransportWebSocket = "websocket"
)

// Registry backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// SwitcherConfig holds the connection settings for the SSP 7.1.
type SwitcherConfig struct {
	Transport     string `toml:"transport"`
	Address       string `toml:"address"`
	Port          int    `toml:"port"`
	SerialPort    string `toml:"serial_port"`
	Baud          int    `toml:"baud"`
	URL           string `toml:"url"`
	SkipSSLVerify bool   `toml:"skip_ssl_verify"`
	LineEnding    string `toml:"line_ending"`
	DialTimeout   int    `toml:"dial_timeout"`
}

// DialTimeoutDuration returns the dial timeout.
func (c SwitcherConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Second
}

// HostConfig holds the settings of the registry controls.
type HostConfig struct {
	Inputs    string `toml:"inputs"`
	Heartbeat int    `toml:"heartbeat"`
}

// HeartbeatInterval returns the reconnect heartbeat period.
func (c HostConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat) * time.Second
}

// RegistryConfig selects and configures the device registry backend.
type RegistryConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	KeyPrefix string `toml:"key_prefix"`
}

// NATSConfig holds the host bus settings. An empty URL disables the bus.
type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

// HTTPConfig holds the HTTP API settings. An empty Listen disables the API.
type HTTPConfig struct {
	Listen string `toml:"listen"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}
